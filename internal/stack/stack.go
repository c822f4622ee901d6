package stack

// Stack is a persistent stack backed by a linked list. The nil *Stack is the empty stack.
//
// *Important*: Push and Pop never modify their argument. They return a new stack sharing the tail
// of the old one, so a held reference keeps seeing the same elements.
type Stack[T any] struct {
	value T
	next  *Stack[T]
	size  int
}

func Push[T any](s *Stack[T], value T) *Stack[T] {
	return &Stack[T]{value: value, next: s, size: Len(s) + 1}
}

// Pop returns the top value and the stack below it. It panics on the empty stack.
func Pop[T any](s *Stack[T]) (T, *Stack[T]) {
	return s.value, s.next
}

// Peek returns the top value without removing it. The boolean is false on the empty stack.
func Peek[T any](s *Stack[T]) (T, bool) {
	if s == nil {
		var zero T
		return zero, false
	}
	return s.value, true
}

func Len[T any](s *Stack[T]) int {
	if s == nil {
		return 0
	}
	return s.size
}

func IsEmpty[T any](s *Stack[T]) bool {
	return s == nil
}
