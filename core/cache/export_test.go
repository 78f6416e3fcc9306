package cache

// dropWeak forgets the weak entry for key, as if it had been reclaimed.
func (s *Storage[T]) dropWeak(key int) {
	s.weakMu.Lock()
	delete(s.weak, key)
	s.weakMu.Unlock()
}
