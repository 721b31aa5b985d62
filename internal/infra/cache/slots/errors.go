package slots

import "errors"

var (
	// ErrCacheRead возвращается при ошибке чтения из Redis
	ErrCacheRead = errors.New("slots.cache: failed to read snapshot")

	// ErrCacheWrite возвращается при ошибке записи в Redis
	ErrCacheWrite = errors.New("slots.cache: failed to write snapshot")

	// ErrCacheUnavailable возвращается, если Redis не ответил на ping при подключении
	ErrCacheUnavailable = errors.New("slots.cache: redis unavailable")

	// ErrCacheDecode возвращается, если сохраненный снимок не удалось разобрать
	ErrCacheDecode = errors.New("slots.cache: failed to decode snapshot")
)
