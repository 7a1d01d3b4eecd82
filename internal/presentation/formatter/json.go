package formatter

import (
	"io"

	"github.com/bytedance/sonic"

	"github.com/ibare/baden/internal/core/timeline"
)

type JSONFormatter struct {
	out io.Writer
}

func NewJSONFormatter(out io.Writer) *JSONFormatter {
	return &JSONFormatter{out: out}
}

func (f *JSONFormatter) Format(layout *timeline.Layout) error {
	encoder := sonic.ConfigDefault.NewEncoder(f.out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(layout)
}
