package service

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Backupable интерфейс хранилищ, данные которых нужно периодически сохранять
type Backupable interface {
	GetBackupData() interface{}
	GetBackupFileName() string
}

// BackupService периодически сбрасывает содержимое in-memory хранилищ
// (кошельки, категории, транзакции) в JSON-файлы
type BackupService struct {
	logger      *zap.SugaredLogger
	backupables []Backupable
	dataDir     string
	interval    time.Duration
	mu          sync.RWMutex
}

func NewBackupService(logger *zap.SugaredLogger, dataDir string, interval time.Duration) *BackupService {
	return &BackupService{
		logger:   logger,
		dataDir:  dataDir,
		interval: interval,
	}
}

// RegisterBackupable регистрирует хранилище для бэкапа
func (bs *BackupService) RegisterBackupable(backupable Backupable) {
	bs.mu.Lock()
	defer bs.mu.Unlock()

	bs.backupables = append(bs.backupables, backupable)
	bs.logger.Infof("Registered backupable: %s", backupable.GetBackupFileName())
}

// Start запускает периодический бэкап до отмены контекста
func (bs *BackupService) Start(ctx context.Context) {
	bs.logger.Info("Starting backup service")

	// Первый бэкап сразу при запуске
	if err := bs.PerformBackup(); err != nil {
		bs.logger.Errorf("Initial backup failed: %v", err)
	}

	ticker := time.NewTicker(bs.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := bs.PerformBackup(); err != nil {
				bs.logger.Errorf("Backup failed: %v", err)
			}
		case <-ctx.Done():
			bs.logger.Info("Backup service stopped by context")
			return
		}
	}
}

// PerformBackup сохраняет все зарегистрированные хранилища
func (bs *BackupService) PerformBackup() error {
	bs.mu.RLock()
	backupables := make([]Backupable, len(bs.backupables))
	copy(backupables, bs.backupables)
	bs.mu.RUnlock()

	if len(backupables) == 0 {
		bs.logger.Debug("No backupables registered, skipping backup")
		return nil
	}

	// Бэкапы складываются в поддиректорию с текущей датой
	dateDir := filepath.Join(bs.dataDir, "backups", time.Now().Format("2006-01-02"))
	if err := os.MkdirAll(dateDir, 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	successCount := 0

	for _, backupable := range backupables {
		if err := bs.backupObject(backupable, dateDir); err != nil {
			bs.logger.Errorf("Failed to backup %s: %v", backupable.GetBackupFileName(), err)
		} else {
			successCount++
		}
	}

	bs.logger.Infof("Backup completed: %d/%d objects backed up successfully", successCount, len(backupables))

	return nil
}

func (bs *BackupService) backupObject(backupable Backupable, backupDir string) error {
	fileName := backupable.GetBackupFileName()
	if fileName == "" {
		return fmt.Errorf("empty backup file name")
	}

	data := backupable.GetBackupData()
	if data == nil {
		return fmt.Errorf("no backup data available")
	}

	backupFileName := fmt.Sprintf("%s_backup_%s.json", fileName, time.Now().Format("15-04-05"))
	filePath := filepath.Join(backupDir, backupFileName)

	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal backup data: %w", err)
	}

	if err := os.WriteFile(filePath, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write backup file: %w", err)
	}

	bs.logger.Debugf("Successfully backed up %s to %s", fileName, filePath)

	return nil
}
