package focus

// NoticeKind classifies a user-visible notification.
type NoticeKind int

const (
	NoticeInfo NoticeKind = iota
	NoticeSuccess
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeSuccess:
		return "success"
	case NoticeError:
		return "error"
	}
	return "info"
}

// Notifier surfaces messages to the user.
type Notifier interface {
	Notify(kind NoticeKind, message string)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(kind NoticeKind, message string)

func (f NotifierFunc) Notify(kind NoticeKind, message string) { f(kind, message) }

type discardNotifier struct{}

func (discardNotifier) Notify(NoticeKind, string) {}
