package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/google/uuid"

	"money-manager-backend/internal/models"
)

// CategoryTypeAll значение фильтра, отключающее отбор по типу.
const CategoryTypeAll = "all"

type CategoriesService struct {
	categories   map[string]map[string]models.Category // userID -> categoryID -> category
	transactions TransactionsRemover
	mux          sync.RWMutex
}

func NewCategoriesService(initialData map[string]map[string]models.Category, transactions TransactionsRemover) *CategoriesService {
	cs := &CategoriesService{
		transactions: transactions,
	}

	if initialData != nil {
		cs.categories = initialData
	} else {
		cs.categories = make(map[string]map[string]models.Category)
	}

	return cs
}

func (cs *CategoriesService) CreateCategory(ctx context.Context, category models.Category) (*models.Category, error) {
	userID := models.ClaimsFromContext(ctx).ID

	if err := validateCategory(category); err != nil {
		return nil, err
	}

	cs.mux.Lock()
	defer cs.mux.Unlock()

	if cs.categories[userID] == nil {
		cs.categories[userID] = make(map[string]models.Category)
	}

	// Дубликаты имён внутри одного типа запрещены
	for _, existing := range cs.categories[userID] {
		if existing.Type == category.Type && strings.EqualFold(existing.Name, category.Name) {
			return nil, fmt.Errorf("%w: category with name %q already exists", models.ErrBadRequest, category.Name)
		}
	}

	category.ID = uuid.New().String()
	cs.categories[userID][category.ID] = category

	return &category, nil
}

func (cs *CategoriesService) GetCategory(ctx context.Context, id string) (models.Category, error) {
	userID := models.ClaimsFromContext(ctx).ID

	cs.mux.RLock()
	defer cs.mux.RUnlock()

	category, exists := cs.categories[userID][id]
	if !exists {
		return models.Category{}, fmt.Errorf("%w: no category information", models.ErrNotFound)
	}

	return category, nil
}

// GetCategories возвращает категории пользователя, опционально отобранные по
// типу. Пустой фильтр и "all" эквивалентны.
func (cs *CategoriesService) GetCategories(ctx context.Context, typeFilter string) ([]models.Category, error) {
	userID := models.ClaimsFromContext(ctx).ID

	if typeFilter != "" && typeFilter != CategoryTypeAll {
		if err := models.ValidateCategoryType(typeFilter); err != nil {
			return nil, err
		}
	}

	cs.mux.RLock()
	defer cs.mux.RUnlock()

	userCategories := cs.categories[userID]

	categories := make([]models.Category, 0, len(userCategories))

	for _, category := range userCategories {
		if typeFilter != "" && typeFilter != CategoryTypeAll && category.Type != typeFilter {
			continue
		}

		categories = append(categories, category)
	}

	sort.Slice(categories, func(i, j int) bool {
		if categories[i].Type != categories[j].Type {
			return categories[i].Type < categories[j].Type
		}

		if categories[i].Name != categories[j].Name {
			return categories[i].Name < categories[j].Name
		}

		return categories[i].ID < categories[j].ID
	})

	return categories, nil
}

func (cs *CategoriesService) UpdateCategory(ctx context.Context, id string, category models.Category) (*models.Category, error) {
	userID := models.ClaimsFromContext(ctx).ID

	if err := validateCategory(category); err != nil {
		return nil, err
	}

	cs.mux.Lock()
	defer cs.mux.Unlock()

	if _, exists := cs.categories[userID][id]; !exists {
		return nil, fmt.Errorf("%w: no category information", models.ErrNotFound)
	}

	category.ID = id
	cs.categories[userID][id] = category

	return &category, nil
}

// DeleteCategory удаляет категорию вместе с её транзакциями, явный каскад
// как в DeleteWallet.
func (cs *CategoriesService) DeleteCategory(ctx context.Context, id string) error {
	userID := models.ClaimsFromContext(ctx).ID

	cs.mux.Lock()

	if _, exists := cs.categories[userID][id]; !exists {
		cs.mux.Unlock()
		return fmt.Errorf("%w: no category information", models.ErrNotFound)
	}

	delete(cs.categories[userID], id)
	cs.mux.Unlock()

	if err := cs.transactions.DeleteByCategory(ctx, id); err != nil {
		return fmt.Errorf("can't delete category transactions: %w", err)
	}

	return nil
}

func validateCategory(category models.Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: category must have a name", models.ErrBadRequest)
	}

	if err := models.ValidateCategoryType(category.Type); err != nil {
		return err
	}

	if category.Icon == "" {
		return fmt.Errorf("%w: icon is required for the category", models.ErrBadRequest)
	}

	if category.IconColor == "" {
		return fmt.Errorf("%w: color is required for the category icon", models.ErrBadRequest)
	}

	return nil
}

// GetBackupData возвращает данные для бэкапа
func (cs *CategoriesService) GetBackupData() interface{} {
	cs.mux.RLock()
	defer cs.mux.RUnlock()

	backupData := make(map[string]map[string]models.Category, len(cs.categories))
	for userID, categories := range cs.categories {
		userBackup := make(map[string]models.Category, len(categories))
		for categoryID, category := range categories {
			userBackup[categoryID] = category
		}
		backupData[userID] = userBackup
	}

	return backupData
}

// GetBackupFileName возвращает имя файла для бэкапа
func (cs *CategoriesService) GetBackupFileName() string {
	return "categories"
}
