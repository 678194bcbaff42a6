// Package cache хранит результаты запросов каталога.
// Значения непрозрачны ([]byte), сериализацию выполняет вызывающая сторона.
package cache

import (
	"context"
	"errors"
)

// ErrUnknownDriver — в конфигурации указан неподдерживаемый драйвер кэша.
var ErrUnknownDriver = errors.New("unknown cache driver")

// Store — кэш с общей инвалидацией: любое изменение склада делает
// устаревшими все сохраненные результаты сразу.
//
// Запись привязана к поколению: вызывающий читает Generation до похода
// в хранилище и передаёт его в Set. Если между чтением и записью прошла
// инвалидация, значение в кэш не попадает.
type Store interface {
	// Get возвращает значение и true, если ключ есть и не истек.
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Generation(ctx context.Context) (int64, error)
	Set(ctx context.Context, generation int64, key string, value []byte) error
	InvalidateAll(ctx context.Context) error
}
