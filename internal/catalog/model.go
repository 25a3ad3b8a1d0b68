package catalog

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"
)

var (
	ErrNotFound = errors.New("product not found")
	ErrInvalid  = errors.New("invalid product")
)

// ProductID is stored as a string but accepts JSON numbers, since the
// seeded catalog uses numeric ids and admin-created products use uuids.
type ProductID string

func (id *ProductID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}

	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("product id: %w", err)
		}
		*id = ProductID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("product id must be a string or a number: %w", err)
	}
	*id = ProductID(n.String())

	return nil
}

func (id ProductID) String() string {
	return string(id)
}

func NumericID(n int) ProductID {
	return ProductID(strconv.Itoa(n))
}

type Product struct {
	ID               ProductID `json:"id" bson:"_id"`
	Name             string    `json:"name" bson:"name"`
	Price            float64   `json:"price" bson:"price"`
	OriginalPrice    *float64  `json:"originalPrice,omitempty" bson:"originalPrice,omitempty"`
	Category         string    `json:"category" bson:"category"`
	Image            string    `json:"image" bson:"image"`
	Description      string    `json:"description" bson:"description"`
	Brand            string    `json:"brand,omitempty" bson:"brand,omitempty"`
	CompatibleModels []string  `json:"compatibleModels,omitempty" bson:"compatibleModels,omitempty"`
	IsBundle         bool      `json:"isBundle,omitempty" bson:"isBundle,omitempty"`
	IsCustom         bool      `json:"isCustom,omitempty" bson:"isCustom,omitempty"`
	OriginalImage    string    `json:"originalImage,omitempty" bson:"originalImage,omitempty"`
	SelectedModel    string    `json:"selectedModel,omitempty" bson:"selectedModel,omitempty"`
	CreatedAt        time.Time `json:"createdAt,omitzero" bson:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt,omitzero" bson:"updatedAt"`
}

// Filter narrows a product listing. Empty fields match everything.
type Filter struct {
	Category string
	Brand    string
	Model    string
	Search   string
}
