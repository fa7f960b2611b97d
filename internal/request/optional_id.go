package request

import (
	"bytes"
	"encoding/json"

	"github.com/google/uuid"
)

// OptionalID is a nullable foreign key in an update body. A missing field
// leaves the column alone, null (or the zero UUID) clears it.
type OptionalID struct {
	Set bool
	ID  *uuid.UUID
}

func (o *OptionalID) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.ID = nil
		return nil
	}
	var id uuid.UUID
	if err := json.Unmarshal(data, &id); err != nil {
		return err
	}
	o.ID = &id
	return nil
}

// Patch maps the field onto the services' update convention: nil for no
// change, a pointer to uuid.Nil to clear.
func (o OptionalID) Patch() *uuid.UUID {
	switch {
	case !o.Set:
		return nil
	case o.ID == nil:
		id := uuid.Nil
		return &id
	}
	return o.ID
}
