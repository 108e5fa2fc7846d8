package tui

import "github.com/sadopc/deepwork/internal/focus"

// noticeBoard is the status line. It implements focus.Notifier and is shared
// by pointer so value copies of the models see the same notice.
type noticeBoard struct {
	kind focus.NoticeKind
	text string
}

func (n *noticeBoard) Notify(kind focus.NoticeKind, message string) {
	n.kind = kind
	n.text = message
}

func (n *noticeBoard) clear() {
	n.kind = focus.NoticeInfo
	n.text = ""
}

func (n *noticeBoard) view() string {
	if n.text == "" {
		return ""
	}
	switch n.kind {
	case focus.NoticeSuccess:
		return successStyle.Render(" ✓ " + n.text)
	case focus.NoticeError:
		return errorStyle.Render(" ✗ " + n.text)
	}
	return mutedStyle.Render(" " + n.text)
}
