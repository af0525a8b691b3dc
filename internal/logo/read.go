package logo

import (
	"errors"
	"io"
)

var errLogoTooLarge = errors.New("logo_too_large")

func readLimited(r io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, errLogoTooLarge
	}
	return data, nil
}
