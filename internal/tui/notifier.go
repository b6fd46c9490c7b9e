package tui

// ChannelNotifier adapts domain.Notifier to a channel for Bubble Tea.
// Gateways call it from background goroutines; sends are non-blocking so a
// stalled UI never stalls a mutation.
type ChannelNotifier struct {
	ch chan<- ToastMsg
}

// NewChannelNotifier creates a channel-based notifier.
func NewChannelNotifier(ch chan<- ToastMsg) *ChannelNotifier {
	return &ChannelNotifier{ch: ch}
}

func (n *ChannelNotifier) Success(msg string) {
	n.send(ToastMsg{Level: ToastSuccess, Text: msg})
}

func (n *ChannelNotifier) Warn(msg string) {
	n.send(ToastMsg{Level: ToastWarn, Text: msg})
}

func (n *ChannelNotifier) Error(msg string) {
	n.send(ToastMsg{Level: ToastError, Text: msg})
}

func (n *ChannelNotifier) send(msg ToastMsg) {
	select {
	case n.ch <- msg:
	default: // Non-blocking if channel full
	}
}
