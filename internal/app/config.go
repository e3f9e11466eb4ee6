package app

import (
	"crypto/subtle"
	"fmt"
	"path/filepath"
	"strings"

	log "github.com/sirupsen/logrus"
	"gopkg.in/ini.v1"
)

const (
	// StorageDriverFile — таблицы в текстовых файлах (по умолчанию).
	StorageDriverFile = "file"
	// StorageDriverMemory — таблицы в памяти процесса, данные не сохраняются.
	StorageDriverMemory = "memory"
)

const (
	envDataDir         = "EATS_DATA_DIR"
	envDishesFile      = "EATS_DISHES_FILE"
	envOrdersFile      = "EATS_ORDERS_FILE"
	envStorageDriver   = "EATS_STORAGE_DRIVER"
	envPersistSequence = "EATS_PERSIST_SEQUENCE"
	envLogLevel        = "EATS_LOG_LEVEL"
	envMetricsAddr     = "EATS_METRICS_ADDR"
	envAdminUsername   = "EATS_ADMIN_USERNAME"
	envAdminPassword   = "EATS_ADMIN_PASSWORD"
)

// EnvLookup совместим с os.LookupEnv.
type EnvLookup func(key string) (string, bool)

// Config описывает настройки запуска.
type Config struct {
	DataDir       string
	DishesFile    string
	OrdersFile    string
	StorageDriver string
	// PersistSequence включает файл-счётчик номеров заказов (<orders>.seq).
	// Без него номер считается по числу строк и максимальному существующему номеру.
	PersistSequence bool
	LogLevel        string
	// MetricsAddr — адрес HTTP для /metrics и /healthz. Пусто — сервер не запускается.
	MetricsAddr string
	// Учётные данные администратора. Это демонстрационный барьер в меню,
	// а не механизм безопасности: файлы данных доступны всем, кто может их прочитать.
	AdminUsername string
	AdminPassword string
}

// DefaultConfig возвращает настройки, совместимые с исходным форматом файлов.
func DefaultConfig() Config {
	return Config{
		DataDir:         ".",
		DishesFile:      "dishes.txt",
		OrdersFile:      "orders.txt",
		StorageDriver:   StorageDriverFile,
		PersistSequence: true,
		LogLevel:        "warning",
		AdminUsername:   "admin",
		AdminPassword:   "password123",
	}
}

// DishesPath возвращает путь к файлу блюд.
func (c Config) DishesPath() string {
	return c.resolve(c.DishesFile)
}

// OrdersPath возвращает путь к файлу заказов.
func (c Config) OrdersPath() string {
	return c.resolve(c.OrdersFile)
}

func (c Config) resolve(file string) string {
	if filepath.IsAbs(file) {
		return file
	}
	return filepath.Join(c.DataDir, file)
}

// CheckAdmin сравнивает учётные данные администратора.
func (c Config) CheckAdmin(username, password string) bool {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(c.AdminUsername)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(c.AdminPassword)) == 1
	return userOK && passOK
}

// Validate проверяет итоговую конфигурацию.
func (c Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverFile, StorageDriverMemory:
	default:
		return fmt.Errorf("unsupported storage driver %q (use %s|%s)", c.StorageDriver, StorageDriverFile, StorageDriverMemory)
	}
	if c.StorageDriver == StorageDriverFile {
		if strings.TrimSpace(c.DishesFile) == "" || strings.TrimSpace(c.OrdersFile) == "" {
			return fmt.Errorf("dishes and orders files are required")
		}
		if c.DishesPath() == c.OrdersPath() {
			return fmt.Errorf("dishes and orders must be stored in different files")
		}
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("invalid log level: %w", err)
	}
	if strings.TrimSpace(c.AdminUsername) == "" {
		return fmt.Errorf("admin username is required")
	}
	return nil
}

// Load собирает конфигурацию: значения по умолчанию, затем INI-файл
// (если path не пуст), затем переменные окружения. Некорректные значения
// окружения пропускаются и возвращаются как предупреждения.
func Load(path string, lookup EnvLookup) (Config, []error, error) {
	if path == "" {
		cfg, warnings := readConfigFromEnv(lookup)
		return cfg, warnings, nil
	}

	cfg, err := loadFile(path, DefaultConfig())
	if err != nil {
		return Config{}, nil, err
	}
	cfg, warnings := applyEnv(cfg, lookup)
	return cfg, warnings, nil
}

// readConfigFromEnv накладывает окружение на DefaultConfig.
func readConfigFromEnv(lookup EnvLookup) (Config, []error) {
	return applyEnv(DefaultConfig(), lookup)
}

// loadFile накладывает значения INI-файла на cfg.
func loadFile(path string, cfg Config) (Config, error) {
	file, err := ini.Load(path)
	if err != nil {
		return Config{}, fmt.Errorf("load config %s: %w", path, err)
	}

	storage := file.Section("storage")
	cfg.StorageDriver = NormalizeDriver(storage.Key("driver").MustString(cfg.StorageDriver))
	cfg.DataDir = storage.Key("data_dir").MustString(cfg.DataDir)
	cfg.DishesFile = storage.Key("dishes_file").MustString(cfg.DishesFile)
	cfg.OrdersFile = storage.Key("orders_file").MustString(cfg.OrdersFile)
	cfg.PersistSequence = storage.Key("persist_sequence").MustBool(cfg.PersistSequence)

	cfg.LogLevel = file.Section("log").Key("level").MustString(cfg.LogLevel)
	cfg.MetricsAddr = file.Section("metrics").Key("addr").MustString(cfg.MetricsAddr)

	admin := file.Section("admin")
	cfg.AdminUsername = admin.Key("username").MustString(cfg.AdminUsername)
	cfg.AdminPassword = admin.Key("password").MustString(cfg.AdminPassword)

	return cfg, nil
}

// applyEnv накладывает переменные окружения на cfg.
func applyEnv(cfg Config, lookup EnvLookup) (Config, []error) {
	if lookup == nil {
		return cfg, nil
	}
	var warnings []error

	str := func(key string, target *string) {
		if v, ok := lookup(key); ok && strings.TrimSpace(v) != "" {
			*target = strings.TrimSpace(v)
		}
	}

	str(envDataDir, &cfg.DataDir)
	str(envDishesFile, &cfg.DishesFile)
	str(envOrdersFile, &cfg.OrdersFile)
	str(envLogLevel, &cfg.LogLevel)
	str(envMetricsAddr, &cfg.MetricsAddr)
	str(envAdminUsername, &cfg.AdminUsername)
	// Пароль не обрезаем: пробелы могут быть его частью.
	if v, ok := lookup(envAdminPassword); ok && v != "" {
		cfg.AdminPassword = v
	}

	if v, ok := lookup(envStorageDriver); ok && strings.TrimSpace(v) != "" {
		cfg.StorageDriver = NormalizeDriver(v)
	}

	if v, ok := lookup(envPersistSequence); ok && strings.TrimSpace(v) != "" {
		parsed, err := parseBool(v)
		if err != nil {
			warnings = append(warnings, fmt.Errorf("%s: %w", envPersistSequence, err))
		} else {
			cfg.PersistSequence = parsed
		}
	}

	if _, err := log.ParseLevel(cfg.LogLevel); err != nil {
		warnings = append(warnings, fmt.Errorf("%s: %w", envLogLevel, err))
		cfg.LogLevel = DefaultConfig().LogLevel
	}

	return cfg, warnings
}

// NormalizeDriver приводит имя драйвера хранилища к нижнему регистру без пробелов.
func NormalizeDriver(v string) string {
	return strings.ToLower(strings.TrimSpace(v))
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "y", "on":
		return true, nil
	case "0", "false", "no", "n", "off":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool value %q", raw)
	}
}
