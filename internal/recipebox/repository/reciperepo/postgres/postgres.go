package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/pgtools"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	repo "github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo"
	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type RecipesPostgresRepo struct {
	db *pgxpool.Pool
}

func New(ctx context.Context, cfg config.PostgresDB) (RecipesPostgresRepo, error) {
	db, err := pgtools.Connect(ctx, pgtools.ConnString(cfg))
	if err != nil {
		return RecipesPostgresRepo{}, fmt.Errorf("connect to db error: %w", err)
	}

	if err := pgtools.ApplyMigration(cfg); err != nil {
		return RecipesPostgresRepo{}, fmt.Errorf("apply migration error: %w", err)
	}

	return RecipesPostgresRepo{
		db: db,
	}, nil
}

func (rr RecipesPostgresRepo) CreateRecipe(ctx context.Context, //nolint:nonamedreturns
	r models.Recipe, tagIDs, ingredIDs []int64,
) (created models.Recipe, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "create")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Insert("recipes").
		Columns("user_id", "title", "time_minutes", "price", "link", "image_url").
		Values(r.UserID, r.Title, r.TimeMinutes, r.Price, r.Link, r.ImageURL).
		Suffix("RETURNING id, created_at").ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(&r.ID, &r.CreatedAt); err != nil {
		return models.Recipe{}, fmt.Errorf("scan error: %w", err)
	}

	if err = rr.replaceLabels(ctx, tx, "tags", "recipe_tags", "tag_id", r.ID, tagIDs); err != nil {
		return models.Recipe{}, err
	}

	if err = rr.replaceLabels(ctx, tx, "ingredients", "recipe_ingredients", "ingredient_id", r.ID, ingredIDs); err != nil {
		return models.Recipe{}, err
	}

	if err = rr.loadLabels(ctx, tx, []*models.Recipe{&r}); err != nil {
		return models.Recipe{}, err
	}

	return r, nil
}

func (rr RecipesPostgresRepo) GetRecipe(ctx context.Context, //nolint:nonamedreturns
	userID, recipeID int64,
) (r models.Recipe, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "get")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("id", "user_id", "title", "time_minutes",
		"price", "link", "image_url", "created_at").
		From("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(
		&r.ID, &r.UserID, &r.Title, &r.TimeMinutes,
		&r.Price, &r.Link, &r.ImageURL, &r.CreatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = repo.ErrNotFound

			return models.Recipe{}, err
		}

		return models.Recipe{}, fmt.Errorf("scan error: %w", err)
	}

	if err = rr.loadLabels(ctx, tx, []*models.Recipe{&r}); err != nil {
		return models.Recipe{}, err
	}

	return r, nil
}

func (rr RecipesPostgresRepo) ListRecipes(ctx context.Context, //nolint:nonamedreturns
	userID int64, f repo.Filter,
) (recipes []models.Recipe, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "list")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	sb := psql.Select("id", "user_id", "title", "time_minutes",
		"price", "link", "image_url", "created_at").
		From("recipes").
		Where(squirrel.Eq{"user_id": userID})

	if len(f.TagIDs) != 0 {
		sb = sb.Where("EXISTS (SELECT 1 FROM recipe_tags rt"+
			" WHERE rt.recipe_id = recipes.id AND rt.tag_id = ANY(?))", f.TagIDs)
	}

	if len(f.IngredientIDs) != 0 {
		sb = sb.Where("EXISTS (SELECT 1 FROM recipe_ingredients ri"+
			" WHERE ri.recipe_id = recipes.id AND ri.ingredient_id = ANY(?))", f.IngredientIDs)
	}

	query, args, err := sb.OrderBy("id DESC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	recipes = make([]models.Recipe, 0, 10) //nolint:gomnd

	for rows.Next() {
		var r models.Recipe

		if err = rows.Scan(&r.ID, &r.UserID, &r.Title, &r.TimeMinutes,
			&r.Price, &r.Link, &r.ImageURL, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan error: %w", err)
		}

		recipes = append(recipes, r)
	}

	rows.Close()

	ptrs := make([]*models.Recipe, 0, len(recipes))
	for i := range recipes {
		ptrs = append(ptrs, &recipes[i])
	}

	if err = rr.loadLabels(ctx, tx, ptrs); err != nil {
		return nil, err
	}

	return recipes, nil
}

func (rr RecipesPostgresRepo) UpdateRecipe(ctx context.Context, //nolint:nonamedreturns,cyclop
	userID, recipeID int64, upd repo.RecipeUpdate,
) (r models.Recipe, err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return models.Recipe{}, fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "update")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	// Scoped lock keeps the row update and association replacement
	// invisible to readers until commit.
	query, args, err := psql.Select("id").From("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).
		Suffix("FOR UPDATE").ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	var id int64
	if err = tx.QueryRow(ctx, query, args...).Scan(&id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			err = repo.ErrNotFound

			return models.Recipe{}, err
		}

		return models.Recipe{}, fmt.Errorf("scan error: %w", err)
	}

	ub := psql.Update("recipes").Where(squirrel.Eq{"id": recipeID, "user_id": userID})
	changed := false

	if upd.Title != nil {
		ub = ub.Set("title", *upd.Title)
		changed = true
	}

	if upd.TimeMinutes != nil {
		ub = ub.Set("time_minutes", *upd.TimeMinutes)
		changed = true
	}

	if upd.Price != nil {
		ub = ub.Set("price", *upd.Price)
		changed = true
	}

	if upd.Link != nil {
		ub = ub.Set("link", *upd.Link)
		changed = true
	}

	if changed {
		query, args, err = ub.ToSql()
		if err != nil {
			return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
		}

		if _, err = tx.Exec(ctx, query, args...); err != nil {
			return models.Recipe{}, fmt.Errorf("exec error: %w", err)
		}
	}

	if upd.TagIDs != nil {
		if err = rr.deleteLabels(ctx, tx, "recipe_tags", recipeID); err != nil {
			return models.Recipe{}, err
		}

		if err = rr.replaceLabels(ctx, tx, "tags", "recipe_tags", "tag_id", recipeID, *upd.TagIDs); err != nil {
			return models.Recipe{}, err
		}
	}

	if upd.IngredIDs != nil {
		if err = rr.deleteLabels(ctx, tx, "recipe_ingredients", recipeID); err != nil {
			return models.Recipe{}, err
		}

		if err = rr.replaceLabels(ctx, tx, "ingredients", "recipe_ingredients",
			"ingredient_id", recipeID, *upd.IngredIDs); err != nil {
			return models.Recipe{}, err
		}
	}

	query, args, err = psql.Select("id", "user_id", "title", "time_minutes",
		"price", "link", "image_url", "created_at").
		From("recipes").
		Where(squirrel.Eq{"id": recipeID}).ToSql()
	if err != nil {
		return models.Recipe{}, fmt.Errorf("to sql error: %w", err)
	}

	if err = tx.QueryRow(ctx, query, args...).Scan(
		&r.ID, &r.UserID, &r.Title, &r.TimeMinutes,
		&r.Price, &r.Link, &r.ImageURL, &r.CreatedAt); err != nil {
		return models.Recipe{}, fmt.Errorf("scan error: %w", err)
	}

	if err = rr.loadLabels(ctx, tx, []*models.Recipe{&r}); err != nil {
		return models.Recipe{}, err
	}

	return r, nil
}

func (rr RecipesPostgresRepo) DeleteRecipe(ctx context.Context, userID, recipeID int64) (err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "delete")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete("recipes").
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

func (rr RecipesPostgresRepo) SetRecipeImage(ctx context.Context, userID, recipeID int64, imageURL string) (err error) {
	tx, err := rr.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("cannot begin transaction error: %w", err)
	}

	defer func() {
		err = pgtools.CommitOrRollback(ctx, tx, err, "set image")
	}()

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Update("recipes").
		Set("image_url", imageURL).
		Where(squirrel.Eq{"id": recipeID, "user_id": userID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	ct, err := tx.Exec(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	if ct.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	return nil
}

func (rr RecipesPostgresRepo) deleteLabels(ctx context.Context, tx pgx.Tx, joinTable string, recipeID int64) error {
	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Delete(joinTable).
		Where(squirrel.Eq{"recipe_id": recipeID}).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

// replaceLabels inserts the given label ids for a recipe after checking
// that every id resolves to an existing row. Ownership of the labels is
// not checked here, only existence.
func (rr RecipesPostgresRepo) replaceLabels(ctx context.Context, tx pgx.Tx,
	labelTable, joinTable, labelCol string, recipeID int64, ids []int64,
) error {
	if len(ids) == 0 {
		return nil
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("count(*)").
		From(labelTable).
		Where("id = ANY(?)", ids).ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	var cnt int64
	if err := tx.QueryRow(ctx, query, args...).Scan(&cnt); err != nil {
		return fmt.Errorf("scan error: %w", err)
	}

	if cnt != int64(len(unique(ids))) {
		return repo.ErrUnknownEntity
	}

	ib := psql.Insert(joinTable).Columns("recipe_id", labelCol)
	for _, id := range unique(ids) {
		ib = ib.Values(recipeID, id)
	}

	query, args, err = ib.ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	if _, err := tx.Exec(ctx, query, args...); err != nil {
		return fmt.Errorf("exec error: %w", err)
	}

	return nil
}

func (rr RecipesPostgresRepo) loadLabels(ctx context.Context, tx pgx.Tx, recipes []*models.Recipe) error {
	if len(recipes) == 0 {
		return nil
	}

	ids := make([]int64, 0, len(recipes))
	byID := make(map[int64]*models.Recipe, len(recipes))

	for _, r := range recipes {
		ids = append(ids, r.ID)
		byID[r.ID] = r
		r.Tags = []models.Tag{}
		r.Ingredients = []models.Ingredient{}
	}

	psql := squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

	query, args, err := psql.Select("rt.recipe_id", "t.id", "t.name", "t.user_id").
		From("recipe_tags rt").
		Join("tags t ON t.id = rt.tag_id").
		Where("rt.recipe_id = ANY(?)", ids).
		OrderBy("t.name DESC").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID int64
			t        models.Tag
		)

		if err := rows.Scan(&recipeID, &t.ID, &t.Name, &t.UserID); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		byID[recipeID].Tags = append(byID[recipeID].Tags, t)
	}

	rows.Close()

	query, args, err = psql.Select("ri.recipe_id", "i.id", "i.name", "i.user_id").
		From("recipe_ingredients ri").
		Join("ingredients i ON i.id = ri.ingredient_id").
		Where("ri.recipe_id = ANY(?)", ids).
		OrderBy("i.name DESC").ToSql()
	if err != nil {
		return fmt.Errorf("to sql error: %w", err)
	}

	rows, err = tx.Query(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("query error: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			recipeID int64
			i        models.Ingredient
		)

		if err := rows.Scan(&recipeID, &i.ID, &i.Name, &i.UserID); err != nil {
			return fmt.Errorf("scan error: %w", err)
		}

		byID[recipeID].Ingredients = append(byID[recipeID].Ingredients, i)
	}

	return nil
}

func unique(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	out := make([]int64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		out = append(out, id)
	}

	return out
}

func (rr RecipesPostgresRepo) Shutdown(ctx context.Context) error {
	done := make(chan struct{})

	go func() {
		rr.db.Close()
		close(done)
	}()

	select {
	case <-ctx.Done():
		return fmt.Errorf("context error: %w", ctx.Err())
	case <-done:
		return nil
	}
}
