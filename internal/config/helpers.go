package config

import (
	"errors"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

// isMissingConfig сообщает, что файл конфигурации просто отсутствует
func isMissingConfig(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

// splitList нормализует списки: режет значения по запятым, убирает пробелы и пустые элементы
func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
