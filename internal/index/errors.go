package index

import "errors"

var ErrQdrantUnreachable = errors.New("qdrant server unreachable")
