package bind_group_provider

// BufferWrite describes one queued uniform upload: Data is written into the buffer at
// Binding of Provider, starting at Offset bytes.
type BufferWrite struct {
	Provider BindGroupProvider
	Binding  int
	Offset   uint64
	Data     []byte
}
