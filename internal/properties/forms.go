package properties

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/boulder-sim/boulder/internal/network"
	"github.com/boulder-sim/boulder/internal/units"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = validate.RegisterValidation("ident", func(fl validator.FieldLevel) bool {
		return !strings.ContainsAny(fl.Field().String(), " \t\r\n")
	})
	_ = validate.RegisterValidation("quantity", func(fl validator.FieldLevel) bool {
		text := strings.TrimSpace(fl.Field().String())
		if text == "" {
			return true
		}
		dim, ok := units.Lookup(fl.FieldName())
		if !ok {
			dim = units.Scalar
		}
		_, err := units.Parse(dim, text)
		return err == nil
	})
}

// NodeForm is the add-reactor dialog. Numeric fields are text so unit
// suffixes ("1 atm", "726.85 degC") can be typed directly.
type NodeForm struct {
	ID          string `json:"id" validate:"required,max=64,ident"`
	Type        string `json:"type" validate:"required,oneof=IdealGasReactor IdealGasConstPressureReactor IdealGasMoleReactor ConstPressureReactor Reactor Reservoir"`
	Temperature string `json:"temperature" validate:"required,quantity"`
	Pressure    string `json:"pressure" validate:"required,quantity"`
	Composition string `json:"composition" validate:"required"`
	Volume      string `json:"volume" validate:"omitempty,quantity"`
}

// DefaultNodeForm is what the dialog opens with.
func DefaultNodeForm(id string) NodeForm {
	return NodeForm{
		ID:          id,
		Type:        string(network.IdealGasReactor),
		Temperature: "300",
		Pressure:    "101325",
		Composition: "O2:1,N2:3.76",
	}
}

// Node validates the form and converts it to a model node.
func (f NodeForm) Node() (network.Node, error) {
	f.ID = strings.TrimSpace(f.ID)
	if err := check(network.EntityNode, f.ID, f); err != nil {
		return network.Node{}, err
	}
	props := network.Properties{
		"temperature": strings.TrimSpace(f.Temperature),
		"pressure":    strings.TrimSpace(f.Pressure),
		"composition": strings.TrimSpace(f.Composition),
	}
	if v := strings.TrimSpace(f.Volume); v != "" {
		props["volume"] = v
	}
	return network.Node{ID: f.ID, Type: network.Kind(f.Type), Properties: props}, nil
}

// ConnectionForm is the add-flow-device dialog.
type ConnectionForm struct {
	ID           string `json:"id" validate:"required,max=64,ident"`
	Type         string `json:"type" validate:"required,oneof=MassFlowController Valve PressureController Wall"`
	Source       string `json:"source" validate:"required"`
	Target       string `json:"target" validate:"required,nefield=Source"`
	MassFlowRate string `json:"mass_flow_rate" validate:"required_if=Type MassFlowController,omitempty,quantity"`
}

// DefaultConnectionForm opens the dialog for a mass flow controller.
func DefaultConnectionForm(id string) ConnectionForm {
	return ConnectionForm{
		ID:           id,
		Type:         string(network.MassFlowController),
		MassFlowRate: units.FormatNumber(0.001),
	}
}

// Connection validates the form and converts it to a model connection.
func (f ConnectionForm) Connection() (network.Connection, error) {
	f.ID = strings.TrimSpace(f.ID)
	if err := check(network.EntityConnection, f.ID, f); err != nil {
		return network.Connection{}, err
	}
	props := network.Properties{}
	if v := strings.TrimSpace(f.MassFlowRate); v != "" {
		props["mass_flow_rate"] = v
	}
	return network.Connection{
		ID:         f.ID,
		Type:       network.Kind(f.Type),
		Source:     strings.TrimSpace(f.Source),
		Target:     strings.TrimSpace(f.Target),
		Properties: props,
	}, nil
}

func check(entity network.Entity, id string, form any) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok || len(verrs) == 0 {
		return err
	}

	// first failure only, the dialog shows one message at a time
	e := verrs[0]
	return &network.Error{
		Kind:   network.ErrValidation,
		Entity: entity,
		ID:     id,
		Field:  e.Field(),
		Msg:    describe(e),
	}
}

func describe(e validator.FieldError) string {
	switch e.Tag() {
	case "required", "required_if":
		return "is required"
	case "max":
		return "must not exceed " + e.Param() + " characters"
	case "ident":
		return "must not contain whitespace"
	case "oneof":
		return "must be one of " + strings.ReplaceAll(e.Param(), " ", ", ")
	case "nefield":
		return "must differ from source"
	case "quantity":
		return "is not a number with a known unit"
	default:
		return "failed " + e.Tag() + " validation"
	}
}
