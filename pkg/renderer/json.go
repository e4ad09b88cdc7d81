package renderer

import (
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"

	"github.com/glt-tools/glt/pkg/domain/model"
)

type JSON struct{}

func (x *JSON) Format() string { return "json" }

func (x *JSON) Render(report *model.ActivityReport) ([]byte, error) {
	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode report as JSON")
	}
	return append(raw, '\n'), nil
}
