package backend

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schemas/listings.json
var listingsSchemaJSON []byte

const listingsSchemaURL = "schemas/listings.json"

var (
	listingsSchema     *jsonschema.Schema
	listingsSchemaOnce sync.Once
	listingsSchemaErr  error
)

func compiledListingsSchema() (*jsonschema.Schema, error) {
	listingsSchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(listingsSchemaURL, bytes.NewReader(listingsSchemaJSON)); err != nil {
			listingsSchemaErr = fmt.Errorf("add listings schema: %w", err)
			return
		}
		listingsSchema, listingsSchemaErr = compiler.Compile(listingsSchemaURL)
	})
	return listingsSchema, listingsSchemaErr
}

// ValidateListings checks a raw data feed against the listings schema.
func ValidateListings(body []byte) error {
	schema, err := compiledListingsSchema()
	if err != nil {
		return err
	}
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return fmt.Errorf("decode listings: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("listings do not match schema: %w", err)
	}
	return nil
}
