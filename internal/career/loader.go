package career

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Data holds every record sequence loaded from the data directory.
type Data struct {
	Jobs       []Job
	Stories    []CarStory
	Statements []Statement
	Skills     []SkillGroup
	Education  []Education
	Languages  []Language
	Headers    Headers
}

var validate = validator.New()

// LoadDir reads the YAML data files from dir. Every file is optional; a
// missing file yields an empty record sequence. Records are validated for
// required fields before linkage happens, so malformed data fails the run
// before any network cost.
func LoadDir(dir string) (*Data, error) {
	data := &Data{}

	if err := loadRecords(filepath.Join(dir, "jobs.yaml"), &data.Jobs); err != nil {
		return nil, err
	}
	if err := loadRecords(filepath.Join(dir, "carstories.yaml"), &data.Stories); err != nil {
		return nil, err
	}
	if err := loadRecords(filepath.Join(dir, "statements.yaml"), &data.Statements); err != nil {
		return nil, err
	}
	if err := loadRecords(filepath.Join(dir, "skills.yaml"), &data.Skills); err != nil {
		return nil, err
	}
	if err := loadRecords(filepath.Join(dir, "education.yaml"), &data.Education); err != nil {
		return nil, err
	}
	if err := loadRecords(filepath.Join(dir, "languages.yaml"), &data.Languages); err != nil {
		return nil, err
	}

	headers, err := loadHeaders(filepath.Join(dir, "headers.yaml"))
	if err != nil {
		return nil, err
	}
	data.Headers = headers

	return data, nil
}

// loadRecords decodes a YAML file holding a list of records into out, which
// must be a pointer to a slice of record structs. The documents are decoded
// generically first and then mapped onto the typed records so that field
// validation can report the file and record index.
func loadRecords[T any](path string, out *[]T) error {
	docs, err := loadDocs(path)
	if err != nil || docs == nil {
		return err
	}

	records := make([]T, 0, len(docs))
	for i, doc := range docs {
		var record T

		cfg := &mapstructure.DecoderConfig{
			Result:           &record,
			WeaklyTypedInput: true,
		}
		decoder, err := mapstructure.NewDecoder(cfg)
		if err != nil {
			return err
		}
		if err := decoder.Decode(doc); err != nil {
			return fmt.Errorf("%s: record %d: %w", filepath.Base(path), i+1, err)
		}

		if err := validate.Struct(record); err != nil {
			return fmt.Errorf("%s: record %d: %w", filepath.Base(path), i+1, err)
		}

		records = append(records, record)
	}

	*out = records
	return nil
}

// loadHeaders reads the header metadata. The file holds a list with a single
// free-form mapping, matching the other record files in shape.
func loadHeaders(path string) (Headers, error) {
	docs, err := loadDocs(path)
	if err != nil || len(docs) == 0 {
		return nil, err
	}

	return Headers(docs[0]), nil
}

func loadDocs(path string) ([]map[string]any, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(path), err)
	}

	var docs []map[string]any
	if err := yaml.Unmarshal(raw, &docs); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", filepath.Base(path), err)
	}

	return docs, nil
}
