// pkg/config/rules.go
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/nicholasarchambault/eBay-auto-listings/pkg/cleaner"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/model"
	"github.com/nicholasarchambault/eBay-auto-listings/pkg/pipeline"
)

// DefaultRules returns the cleaning rules for the German eBay autos export:
// the canonical rename table, the low-value column drops, the yes/no value
// translation, the currency and distance coercions, and the domain-valid
// ranges.
func DefaultRules() pipeline.Rules {
	return pipeline.Rules{
		Normalize: cleaner.NormalizeRules{
			Rename: map[string]string{
				"dateCrawled":         model.FieldDateCrawled,
				"name":                model.FieldName,
				"offerType":           "offer_type",
				"price":               model.FieldPrice,
				"abtest":              "ab_test",
				"vehicleType":         model.FieldVehicleType,
				"yearOfRegistration":  model.FieldRegistrationYear,
				"gearbox":             model.FieldGearbox,
				"powerPS":             model.FieldPowerPS,
				"model":               model.FieldModel,
				"odometer":            model.FieldOdometer,
				"monthOfRegistration": model.FieldRegistrationMonth,
				"fuelType":            model.FieldFuelType,
				"brand":               model.FieldBrand,
				"notRepairedDamage":   model.FieldUnrepairedDamage,
				"dateCreated":         model.FieldAdCreated,
				"nrOfPictures":        "nr_of_pictures",
				"postalCode":          model.FieldPostalCode,
				"lastSeen":            model.FieldLastSeen,
			},
			Drop:         []string{"seller", "offer_type"},
			DropConstant: true,
			Relabel: map[string]map[string]string{
				model.FieldUnrepairedDamage: {
					"ja":   "yes",
					"nein": "no",
				},
			},
		},
		Coerce: []cleaner.CoercionSpec{
			{
				Column: model.FieldPrice,
				Strip:  []string{"$", ","},
			},
			{
				Column:   model.FieldOdometer,
				Strip:    []string{"km", ","},
				RenameTo: model.FieldOdometerKm,
			},
		},
		Filters: []cleaner.FilterRule{
			{
				Column:    model.FieldPrice,
				Min:       1,
				DetectMax: true,
			},
			{
				Column: model.FieldRegistrationYear,
				Min:    1900,
				Max:    2016,
			},
		},
	}
}

// LoadRules reads pipeline rules from a YAML file. An empty path returns the
// built-in defaults.
func LoadRules(path string) (pipeline.Rules, error) {
	if path == "" {
		return DefaultRules(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return pipeline.Rules{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rules pipeline.Rules
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return pipeline.Rules{}, fmt.Errorf("failed to parse rules file %s: %w", path, err)
	}
	return rules, nil
}
