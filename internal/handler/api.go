package handler

import (
	"time"

	"github.com/gentlehabits/internal/service"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db       *gorm.DB
	habits   *service.HabitService
	entries  *service.EntryService
	progress *service.ProgressService
	settings *service.SettingService
	backup   *service.BackupService
	auth     *service.AuthService
	logger   *zap.Logger
	now      func() time.Time
}

// Options 汇总构造 API 时的可选配置
type Options struct {
	Passcode string
	Defaults service.Settings
	Logger   *zap.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) (*API, error) {
	auth, err := service.NewAuthService(gdb, opts.Passcode)
	if err != nil {
		return nil, err
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	habits := service.NewHabitService(gdb)
	entries := service.NewEntryService(gdb)

	return &API{
		db:       gdb,
		habits:   habits,
		entries:  entries,
		progress: service.NewProgressService(habits, entries),
		settings: service.NewSettingService(gdb, opts.Defaults),
		backup:   service.NewBackupService(gdb),
		auth:     auth,
		logger:   logger,
		now:      time.Now,
	}, nil
}

// SetClock 替换全部服务的时间来源，主要面向测试场景。
func (a *API) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	a.now = now
	a.habits.SetClock(now)
	a.entries.SetClock(now)
	a.backup.SetClock(now)
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// Logger 返回请求日志使用的 logger
func (a *API) Logger() *zap.Logger {
	return a.logger
}
