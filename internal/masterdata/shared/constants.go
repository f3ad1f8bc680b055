package shared

// Browser-side email check used by every entity form.
const (
	EmailPattern = `[a-z0-9._%+\-]+@[a-z0-9.\-]+\.[a-z]{2,}$`
	EmailTitle   = "Digite um email válido"
)
