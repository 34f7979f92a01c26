package wsconfig

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/standardbeagle/wspace/internal/wserrors"
)

// DecodePartialSettings tolerantly decodes a client-supplied, generically
// shaped settings payload (as update_settings receives over whatever
// transport the caller uses) into a PartialSettings. Weakly-typed input is
// accepted the same way kadirpekel-hector's config loader does, since a
// JSON-RPC-style caller may send "80" for an integer field just as readily
// as 80.
func DecodePartialSettings(raw map[string]any) (PartialSettings, error) {
	var out PartialSettings
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return PartialSettings{}, fmt.Errorf("build settings decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return PartialSettings{}, &wserrors.InvalidConfigurationError{Message: "update_settings payload", Cause: err}
	}
	return out, nil
}
