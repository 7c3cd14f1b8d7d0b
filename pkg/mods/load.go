package mods

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/gnana997/gmodts/pkg/catalog"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// ErrInvalidRule is wrapped by every rule validation error.
var ErrInvalidRule = errors.New("invalid modification rule")

type fileRule struct {
	Address       string    `yaml:"address"`
	Modifications []fileMod `yaml:"modifications"`
}

type fileMod struct {
	Type     string     `yaml:"type"`
	Name     string     `yaml:"name"`
	Parent   string     `yaml:"parent"`
	Omit     []string   `yaml:"omit"`
	Field    *fileField `yaml:"field"`
	Argument string     `yaml:"argument"`
	NewType  string     `yaml:"new_type"`
	Default  *string    `yaml:"default"`
	Prefix   string     `yaml:"prefix"`
}

type fileField struct {
	Identifier string `yaml:"identifier"`
	Type       string `yaml:"type"`
	Optional   bool   `yaml:"optional"`
	Doc        string `yaml:"doc"`
}

// Defaults returns the built-in rules shipped with the binary.
func Defaults() (*DB, error) {
	return Parse(defaultsYAML, "defaults.yaml")
}

// Load reads a YAML rule file.
func Load(path string) (*DB, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read mods file: %w", err)
	}
	return Parse(data, path)
}

// Parse decodes YAML rules. source names the input in error messages.
func Parse(data []byte, source string) (*DB, error) {
	var rules []fileRule
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return nil, fmt.Errorf("parse %s: %w", source, err)
	}

	db := Empty()
	var errs []error
	for i, rule := range rules {
		addr := strings.TrimSpace(rule.Address)
		if addr == "" {
			errs = append(errs, fmt.Errorf("%w: %s rule[%d]: address is required", ErrInvalidRule, source, i))
			continue
		}
		for j, fm := range rule.Modifications {
			m, err := fm.convert()
			if err != nil {
				errs = append(errs, fmt.Errorf("%w: %s %q modifications[%d]: %v", ErrInvalidRule, source, addr, j, err))
				continue
			}
			db.byAddress[addr] = append(db.byAddress[addr], m)
		}
	}

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return db, nil
}

func (fm fileMod) convert() (Modification, error) {
	switch Kind(fm.Type) {
	case KindRenameIdentifier:
		if fm.Name == "" {
			return nil, errors.New("rename_identifier needs name")
		}
		return RenameIdentifier{Name: fm.Name}, nil

	case KindAddParent:
		if fm.Parent == "" {
			return nil, errors.New("add_parent needs parent")
		}
		return AddParent{Parent: fm.Parent}, nil

	case KindOmitParentFields:
		if len(fm.Omit) == 0 {
			return nil, errors.New("omit_parent_fields needs at least one omit entry")
		}
		return OmitParentFields{Parent: fm.Parent, Omit: fm.Omit}, nil

	case KindAddField:
		if fm.Field == nil || fm.Field.Identifier == "" || fm.Field.Type == "" {
			return nil, errors.New("add_field needs field.identifier and field.type")
		}
		return AddField{Field: catalog.Field{
			Identifier: fm.Field.Identifier,
			Type:       fm.Field.Type,
			Optional:   fm.Field.Optional,
			DocComment: fm.Field.Doc,
		}}, nil

	case KindModifyArgument:
		if fm.Argument == "" || fm.NewType == "" {
			return nil, errors.New("modify_argument needs argument and new_type")
		}
		return ModifyArgument{Argument: fm.Argument, Type: fm.NewType, Default: fm.Default}, nil

	case KindModifyReturn:
		if fm.NewType == "" {
			return nil, errors.New("modify_return needs new_type")
		}
		return ModifyReturn{Type: fm.NewType}, nil

	case KindInnerNamespace:
		if fm.Prefix == "" {
			return nil, errors.New("inner_namespace needs prefix")
		}
		return InnerNamespace{Prefix: fm.Prefix}, nil

	default:
		return nil, fmt.Errorf("unknown type %q", fm.Type)
	}
}
