package postgres

import (
	"context"
	"fmt"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Masterminds/squirrel"
)

// ListTags returns the user's tags ordered by name descending. With
// assignedOnly set, only tags referenced by at least one recipe are
// returned, collapsed to distinct rows.
func (rr RecipesPostgresRepo) ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select("t.id", "t.name", "t.user_id").
		From("tags t").
		Where(squirrel.Eq{"t.user_id": userID})

	if assignedOnly {
		sb = sb.Options("DISTINCT").
			Join("recipe_tags rt ON rt.tag_id = t.id")
	}

	query, args, err := sb.OrderBy("t.name DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := rr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	tags := make([]models.Tag, 0, 10) //nolint:gomnd

	for rows.Next() {
		var t models.Tag

		if err := rows.Scan(&t.ID, &t.Name, &t.UserID); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		tags = append(tags, t)
	}

	return tags, nil
}

func (rr RecipesPostgresRepo) CreateTag(ctx context.Context, t models.Tag) (models.Tag, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("tags").
		Columns("name", "user_id").
		Values(t.Name, t.UserID).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return models.Tag{}, fmt.Errorf("to sql error: %w", err)
	}

	if err := rr.db.QueryRow(ctx, query, args...).Scan(&t.ID); err != nil {
		return models.Tag{}, fmt.Errorf("scan error: %w", err)
	}

	return t, nil
}

func (rr RecipesPostgresRepo) ListIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]models.Ingredient, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select("i.id", "i.name", "i.user_id").
		From("ingredients i").
		Where(squirrel.Eq{"i.user_id": userID})

	if assignedOnly {
		sb = sb.Options("DISTINCT").
			Join("recipe_ingredients ri ON ri.ingredient_id = i.id")
	}

	query, args, err := sb.OrderBy("i.name DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := rr.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	ingredients := make([]models.Ingredient, 0, 10) //nolint:gomnd

	for rows.Next() {
		var i models.Ingredient

		if err := rows.Scan(&i.ID, &i.Name, &i.UserID); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		ingredients = append(ingredients, i)
	}

	return ingredients, nil
}

func (rr RecipesPostgresRepo) CreateIngredient(ctx context.Context, i models.Ingredient) (models.Ingredient, error) {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("ingredients").
		Columns("name", "user_id").
		Values(i.Name, i.UserID).
		Suffix("RETURNING id").ToSql()
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("to sql error: %w", err)
	}

	if err := rr.db.QueryRow(ctx, query, args...).Scan(&i.ID); err != nil {
		return models.Ingredient{}, fmt.Errorf("scan error: %w", err)
	}

	return i, nil
}
