package records

// DialogKind enumerates the overlays a page can show. At most one is open.
type DialogKind int

const (
	DialogNone DialogKind = iota
	DialogConfirm
	DialogSuccess
	DialogError
	DialogInfo
)

func (k DialogKind) String() string {
	switch k {
	case DialogConfirm:
		return "confirm"
	case DialogSuccess:
		return "success"
	case DialogError:
		return "error"
	case DialogInfo:
		return "info"
	default:
		return "none"
	}
}

// Dialog is the single overlay state of a form or list. Build it with the
// constructors below; the zero value is a closed dialog.
type Dialog[T any] struct {
	kind     DialogKind
	record   T
	messages []string
}

// NoDialog returns a closed dialog.
func NoDialog[T any]() Dialog[T] {
	return Dialog[T]{}
}

// ConfirmDialog asks the user to confirm an action on rec.
func ConfirmDialog[T any](rec T) Dialog[T] {
	return Dialog[T]{kind: DialogConfirm, record: rec}
}

// SuccessDialog reports a completed submit.
func SuccessDialog[T any]() Dialog[T] {
	return Dialog[T]{kind: DialogSuccess}
}

// ErrorDialog lists failure messages.
func ErrorDialog[T any](messages []string) Dialog[T] {
	return Dialog[T]{kind: DialogError, messages: append([]string(nil), messages...)}
}

// InfoDialog shows auxiliary data about rec.
func InfoDialog[T any](rec T) Dialog[T] {
	return Dialog[T]{kind: DialogInfo, record: rec}
}

func (d Dialog[T]) Kind() DialogKind { return d.kind }

func (d Dialog[T]) Open() bool { return d.kind != DialogNone }

// Record returns the selection carried by confirm and info dialogs.
func (d Dialog[T]) Record() (T, bool) {
	if d.kind == DialogConfirm || d.kind == DialogInfo {
		return d.record, true
	}
	var zero T
	return zero, false
}

// Messages returns a copy of the error messages.
func (d Dialog[T]) Messages() []string {
	return append([]string(nil), d.messages...)
}
