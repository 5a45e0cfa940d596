package bind_group_provider

// BufferWrite is one queued upload into the uniform buffer at Binding of Provider.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}

// UniformWrite queues a whole-buffer upload at offset 0.
//
// Parameters:
//   - p: the provider owning the buffer
//   - binding: the binding index of the buffer
//   - data: the bytes to upload
//
// Returns:
//   - BufferWrite: the queued write
func UniformWrite(p BindGroupProvider, binding int, data []byte) BufferWrite {
	return BufferWrite{Provider: p, Binding: binding, Data: data}
}
