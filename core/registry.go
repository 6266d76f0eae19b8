package core

import "sync"

// DefaultRegistry is a thread-safe implementation of Registry.  Lookups try
// the exact format first, then any registered decoder or encoder whose
// CanDecode/CanEncode claims the format, in registration order.
type DefaultRegistry struct {
	mu       sync.RWMutex
	decoders map[Format]Decoder
	encoders map[Format]Encoder
	order    []Format // registration order, for the CanDecode/CanEncode scan
}

// NewRegistry returns an empty DefaultRegistry.
func NewRegistry() *DefaultRegistry {
	return &DefaultRegistry{
		decoders: make(map[Format]Decoder),
		encoders: make(map[Format]Encoder),
	}
}

// RegisterDecoder binds d to f, replacing any earlier decoder.  nil is ignored.
func (r *DefaultRegistry) RegisterDecoder(f Format, d Decoder) {
	if d == nil {
		return
	}
	r.mu.Lock()
	r.remember(f)
	r.decoders[f] = d
	r.mu.Unlock()
}

// RegisterEncoder binds e to f, replacing any earlier encoder.  nil is ignored.
func (r *DefaultRegistry) RegisterEncoder(f Format, e Encoder) {
	if e == nil {
		return
	}
	r.mu.Lock()
	r.remember(f)
	r.encoders[f] = e
	r.mu.Unlock()
}

func (r *DefaultRegistry) DecoderFor(f Format) (Decoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if d, ok := r.decoders[f]; ok {
		return d, true
	}
	for _, k := range r.order {
		if d, ok := r.decoders[k]; ok && d.CanDecode(f) {
			return d, true
		}
	}
	return nil, false
}

func (r *DefaultRegistry) EncoderFor(f Format) (Encoder, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.encoders[f]; ok {
		return e, true
	}
	for _, k := range r.order {
		if e, ok := r.encoders[k]; ok && e.CanEncode(f) {
			return e, true
		}
	}
	return nil, false
}

// remember records f once; callers hold mu.
func (r *DefaultRegistry) remember(f Format) {
	for _, k := range r.order {
		if k == f {
			return
		}
	}
	r.order = append(r.order, f)
}
