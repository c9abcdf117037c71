package notify

// TextNotifier is the outgoing notification channel. Sends are best-effort;
// task handlers log failures and move on.
type TextNotifier interface {
	SendText(text string) error
}

// Nop discards every message. Used when no notifier is configured.
type Nop struct{}

func (Nop) SendText(string) error { return nil }
