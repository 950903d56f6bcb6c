package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"recipe-planner/internal/database"
	"recipe-planner/internal/recipe"
)

// recipeModel is the gorm row of the recipes table.
type recipeModel struct {
	ID              uint                `gorm:"primaryKey"`
	Name            string              `gorm:"not null"`
	Category        string              `gorm:"index"`
	Ingredients     []recipe.Ingredient `gorm:"serializer:json;type:jsonb"`
	Instructions    []string            `gorm:"serializer:json;type:jsonb"`
	PreparationTime int
	CookingTime     int
	Servings        int `gorm:"default:1"`
	ImageURL        string
	Tags            []string `gorm:"serializer:json;type:jsonb"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (recipeModel) TableName() string {
	return "recipes"
}

func toModel(r recipe.Recipe) recipeModel {
	return recipeModel{
		ID:              uint(r.ID),
		Name:            r.Name,
		Category:        r.Category,
		Ingredients:     r.Ingredients,
		Instructions:    r.Instructions,
		PreparationTime: r.PreparationTime,
		CookingTime:     r.CookingTime,
		Servings:        r.Servings,
		ImageURL:        r.ImageURL,
		Tags:            r.Tags,
		CreatedAt:       r.CreatedAt,
		UpdatedAt:       r.UpdatedAt,
	}
}

func (m recipeModel) toRecipe() recipe.Recipe {
	return recipe.Recipe{
		ID:              int(m.ID),
		Name:            m.Name,
		Category:        m.Category,
		Ingredients:     m.Ingredients,
		Instructions:    m.Instructions,
		PreparationTime: m.PreparationTime,
		CookingTime:     m.CookingTime,
		Servings:        m.Servings,
		ImageURL:        m.ImageURL,
		Tags:            m.Tags,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
	}
}

// Postgres stores recipes in PostgreSQL through gorm.
type Postgres struct {
	db *gorm.DB
}

// NewPostgres creates the store and migrates the recipes table.
func NewPostgres(db *gorm.DB) (*Postgres, error) {
	if err := database.AutoMigrateTables(db, &recipeModel{}); err != nil {
		return nil, err
	}
	return &Postgres{db: db}, nil
}

func (s *Postgres) List(ctx context.Context) ([]recipe.Recipe, error) {
	var rows []recipeModel
	if err := s.db.WithContext(ctx).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	out := make([]recipe.Recipe, 0, len(rows))
	for _, row := range rows {
		out = append(out, row.toRecipe())
	}
	return out, nil
}

func (s *Postgres) Get(ctx context.Context, id int) (*recipe.Recipe, error) {
	var row recipeModel
	err := s.db.WithContext(ctx).First(&row, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get recipe %d: %w", id, err)
	}
	r := row.toRecipe()
	return &r, nil
}

func (s *Postgres) GetMany(ctx context.Context, ids []int) (map[int]recipe.Recipe, error) {
	out := make(map[int]recipe.Recipe, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var rows []recipeModel
	if err := s.db.WithContext(ctx).Where("id IN ?", ids).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to get recipes: %w", err)
	}
	for _, row := range rows {
		out[int(row.ID)] = row.toRecipe()
	}
	return out, nil
}

func (s *Postgres) Create(ctx context.Context, r recipe.Recipe) (int, error) {
	row := toModel(prepareNew(r))
	row.ID = 0
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return 0, fmt.Errorf("failed to insert recipe: %w", err)
	}
	return int(row.ID), nil
}

func (s *Postgres) Update(ctx context.Context, id int, p Patch) (*recipe.Recipe, error) {
	if p.Empty() {
		return nil, ErrEmptyPatch
	}

	var updated recipe.Recipe
	found := true
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var row recipeModel
		err := tx.First(&row, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		updated = prepareNew(p.Apply(row.toRecipe()))
		next := toModel(updated)
		if err := tx.Save(&next).Error; err != nil {
			return err
		}
		updated.UpdatedAt = next.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to update recipe %d: %w", id, err)
	}
	if !found {
		return nil, nil
	}
	return &updated, nil
}

func (s *Postgres) Delete(ctx context.Context, id int) (bool, error) {
	res := s.db.WithContext(ctx).Delete(&recipeModel{}, id)
	if res.Error != nil {
		return false, fmt.Errorf("failed to delete recipe %d: %w", id, res.Error)
	}
	return res.RowsAffected > 0, nil
}

type ingredientRow struct {
	ID          int
	Ingredients string
}

// MigrateLegacyIngredients rewrites ingredient lists that still use the
// combined amountAndUnit field. It returns the number of recipes changed.
func (s *Postgres) MigrateLegacyIngredients(ctx context.Context) (int, error) {
	var rows []ingredientRow
	err := s.db.WithContext(ctx).Raw("SELECT id, ingredients::text AS ingredients FROM recipes ORDER BY id").Scan(&rows).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list ingredients: %w", err)
	}

	migrated := 0
	for _, row := range rows {
		encoded, changed, err := migrateJSON(row.Ingredients)
		if err != nil {
			log.Printf("Skipping recipe %d: %v", row.ID, err)
			continue
		}
		if !changed {
			continue
		}
		err = s.db.WithContext(ctx).Exec("UPDATE recipes SET ingredients = ?::jsonb WHERE id = ?", encoded, row.ID).Error
		if err != nil {
			return migrated, fmt.Errorf("failed to update ingredients of recipe %d: %w", row.ID, err)
		}
		migrated++
	}
	return migrated, nil
}
