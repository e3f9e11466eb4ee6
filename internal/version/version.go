// Package version хранит сведения о сборке, заданные через -ldflags:
//
//	go build -ldflags "-X github.com/vladislavdragonenkov/eats/internal/version.version=v1.2.0"
package version

import "fmt"

var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Info returns version information populated via -ldflags.
func Info() (v, c, d string) { return version, commit, date }

// GetVersion возвращает версию сборки.
func GetVersion() string { return version }

// GetCommit возвращает хэш коммита сборки.
func GetCommit() string { return commit }

// GetDate возвращает дату сборки.
func GetDate() string { return date }

func String() string {
	return fmt.Sprintf("version=%s commit=%s date=%s", version, commit, date)
}

// Short возвращает строку для `eats --version`.
func Short() string {
	return fmt.Sprintf("%s (%s, %s)", version, commit, date)
}
