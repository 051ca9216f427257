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

// TransactionsRemover удаляет зависимые транзакции при каскадном удалении
// кошелька или категории.
type TransactionsRemover interface {
	DeleteByWallet(ctx context.Context, walletID string) error
	DeleteByCategory(ctx context.Context, categoryID string) error
}

type WalletsService struct {
	wallets      map[string]map[string]models.Wallet // userID -> walletID -> wallet
	transactions TransactionsRemover
	mux          sync.RWMutex
}

func NewWalletsService(initialData map[string]map[string]models.Wallet, transactions TransactionsRemover) *WalletsService {
	ws := &WalletsService{
		transactions: transactions,
	}

	if initialData != nil {
		ws.wallets = initialData
	} else {
		ws.wallets = make(map[string]map[string]models.Wallet)
	}

	return ws
}

func (ws *WalletsService) CreateWallet(ctx context.Context, wallet models.Wallet) (*models.Wallet, error) {
	userID := models.ClaimsFromContext(ctx).ID

	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	wallet.ID = uuid.New().String()

	ws.mux.Lock()
	defer ws.mux.Unlock()

	if ws.wallets[userID] == nil {
		ws.wallets[userID] = make(map[string]models.Wallet)
	}

	ws.wallets[userID][wallet.ID] = wallet

	return &wallet, nil
}

func (ws *WalletsService) GetWallet(ctx context.Context, id string) (models.Wallet, error) {
	userID := models.ClaimsFromContext(ctx).ID

	ws.mux.RLock()
	defer ws.mux.RUnlock()

	wallet, exists := ws.wallets[userID][id]
	if !exists {
		return models.Wallet{}, fmt.Errorf("%w: no wallet information", models.ErrNotFound)
	}

	return wallet, nil
}

// ListWallets возвращает кошельки пользователя, отсортированные по имени.
func (ws *WalletsService) ListWallets(ctx context.Context) ([]models.Wallet, error) {
	userID := models.ClaimsFromContext(ctx).ID

	ws.mux.RLock()
	defer ws.mux.RUnlock()

	userWallets := ws.wallets[userID]

	wallets := make([]models.Wallet, 0, len(userWallets))
	for _, wallet := range userWallets {
		wallets = append(wallets, wallet)
	}

	sort.Slice(wallets, func(i, j int) bool {
		if wallets[i].Name != wallets[j].Name {
			return wallets[i].Name < wallets[j].Name
		}

		return wallets[i].ID < wallets[j].ID
	})

	return wallets, nil
}

func (ws *WalletsService) UpdateWallet(ctx context.Context, id string, wallet models.Wallet) (*models.Wallet, error) {
	userID := models.ClaimsFromContext(ctx).ID

	if err := validateWallet(wallet); err != nil {
		return nil, err
	}

	ws.mux.Lock()
	defer ws.mux.Unlock()

	if _, exists := ws.wallets[userID][id]; !exists {
		return nil, fmt.Errorf("%w: no wallet information", models.ErrNotFound)
	}

	wallet.ID = id
	ws.wallets[userID][id] = wallet

	return &wallet, nil
}

// DeleteWallet удаляет кошелёк вместе с его транзакциями. Каскад выполняется
// явным вызовом, а не скрытым хуком жизненного цикла записи.
func (ws *WalletsService) DeleteWallet(ctx context.Context, id string) error {
	userID := models.ClaimsFromContext(ctx).ID

	ws.mux.Lock()

	if _, exists := ws.wallets[userID][id]; !exists {
		ws.mux.Unlock()
		return fmt.Errorf("%w: no wallet information", models.ErrNotFound)
	}

	delete(ws.wallets[userID], id)
	ws.mux.Unlock()

	if err := ws.transactions.DeleteByWallet(ctx, id); err != nil {
		return fmt.Errorf("can't delete wallet transactions: %w", err)
	}

	return nil
}

func validateWallet(wallet models.Wallet) error {
	if strings.TrimSpace(wallet.Name) == "" {
		return fmt.Errorf("%w: wallet must have a name", models.ErrBadRequest)
	}

	if wallet.Icon == "" {
		return fmt.Errorf("%w: icon is required for the wallet", models.ErrBadRequest)
	}

	if wallet.IconColor == "" {
		return fmt.Errorf("%w: color is required for the wallet icon", models.ErrBadRequest)
	}

	return nil
}

// GetBackupData возвращает данные для бэкапа
func (ws *WalletsService) GetBackupData() interface{} {
	ws.mux.RLock()
	defer ws.mux.RUnlock()

	backupData := make(map[string]map[string]models.Wallet, len(ws.wallets))
	for userID, wallets := range ws.wallets {
		userBackup := make(map[string]models.Wallet, len(wallets))
		for walletID, wallet := range wallets {
			userBackup[walletID] = wallet
		}
		backupData[userID] = userBackup
	}

	return backupData
}

// GetBackupFileName возвращает имя файла для бэкапа
func (ws *WalletsService) GetBackupFileName() string {
	return "wallets"
}
