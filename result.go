package bodyparse

// Result is returned instead of the bare value when Options.ReturnRawBody is
// set. Raw is the body exactly as it was handed to the decoder.
type Result struct {
	Parsed any    `json:"parsed"`
	Raw    string `json:"raw"`
}

func envelope(v any, raw *RawBody, keepRaw bool) any {
	if !keepRaw {
		return v
	}

	return Result{Parsed: v, Raw: raw.String()}
}
