package slotallocator

import "errors"

var (
	// ErrInvalidStartSlot возвращается, когда со стартового слота нельзя собрать
	// непрерывную цепочку нужной длительности. Вызывающий код обязан сначала проверить CanStart
	ErrInvalidStartSlot = errors.New("slotallocator: start slot cannot satisfy requested duration")

	// ErrInvalidDuration возвращается при неположительной запрошенной длительности
	ErrInvalidDuration = errors.New("slotallocator: requested duration must be positive")

	// ErrBrokenChain возвращается, когда переданный набор слотов не является
	// минимальной непрерывной цепочкой свободных слотов
	ErrBrokenChain = errors.New("slotallocator: covered slots do not form a valid chain")
)
