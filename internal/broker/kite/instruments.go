package kite

import "sync"

// instrumentMapper resolves trading symbols to Kite instrument tokens.
type instrumentMapper struct {
	symbolToToken map[string]uint32
	mu            sync.RWMutex
}

func newInstrumentMapper() *instrumentMapper {
	return &instrumentMapper{
		symbolToToken: make(map[string]uint32),
	}
}

func (im *instrumentMapper) addMapping(symbol string, token uint32) {
	im.mu.Lock()
	defer im.mu.Unlock()

	im.symbolToToken[symbol] = token
}

func (im *instrumentMapper) getToken(symbol string) (uint32, bool) {
	im.mu.RLock()
	defer im.mu.RUnlock()

	token, exists := im.symbolToToken[symbol]
	return token, exists
}
