package loadsvc

import "strings"

// OpType — вид операции над load-джобой.
type OpType string

const (
	OpTypeUnset    OpType = ""
	OpTypeSubmit   OpType = "submit"
	OpTypeStop     OpType = "stop"
	OpTypeProgress OpType = "progress"
)

// OpTypeOf разбирает значение query-параметра opType; неизвестные значения
// остаются незаданными и трактуются как submit.
func OpTypeOf(s string) OpType {
	switch OpType(strings.ToLower(s)) {
	case OpTypeSubmit:
		return OpTypeSubmit
	case OpTypeStop:
		return OpTypeStop
	case OpTypeProgress:
		return OpTypeProgress
	default:
		return OpTypeUnset
	}
}

// Форматы отчёта о прогрессе.
const (
	ProgressFormatText = "TEXT"
	ProgressFormatJSON = "JSON"
)

// Options — неизменяемый набор опций load-операции. Собирается из
// присутствующих query-параметров; отсутствующие сохраняют дефолты.
type Options struct {
	OpType           OpType
	PartialListing   bool
	Verify           bool
	Bandwidth        int64
	Verbose          bool
	LoadMetadataOnly bool
	SkipIfExists     bool
	FileFilterRegx   string
	ProgressFormat   string
}

// DefaultOptions возвращает опции со значениями по умолчанию.
func DefaultOptions() Options {
	return Options{
		ProgressFormat: ProgressFormatText,
	}
}
