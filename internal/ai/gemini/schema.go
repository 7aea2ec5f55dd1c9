package gemini

import "google.golang.org/genai"

// The response contract is enforced twice: the genai schemas steer generation
// on the provider side, and the JSON Schema documents validate what actually
// came back before it is trusted. Bullets may be empty: a shortlisted job can
// have zero relevant stories, and an honest empty array must validate.

const jobContentSchemaJSON = `{
  "type": "object",
  "required": ["description", "bullets"],
  "properties": {
    "description": {
      "type": "string",
      "minLength": 1
    },
    "bullets": {
      "type": "array",
      "items": {
        "type": "string",
        "minLength": 1
      }
    }
  }
}`

const summarySchemaJSON = `{
  "type": "object",
  "required": ["summary"],
  "properties": {
    "summary": {
      "type": "string",
      "minLength": 1
    }
  }
}`

func jobContentSchema() *genai.Schema {
	return &genai.Schema{
		Type:     genai.TypeObject,
		Required: []string{"description", "bullets"},
		Properties: map[string]*genai.Schema{
			"description": {
				Type:        genai.TypeString,
				Description: "A short narrative description of the position, tailored to the advert.",
			},
			"bullets": {
				Type:        genai.TypeArray,
				Description: "Ordered bullet achievement strings rephrased from the provided CAR stories.",
				Items:       &genai.Schema{Type: genai.TypeString},
			},
		},
	}
}

func summarySchema() *genai.Schema {
	return &genai.Schema{
		Type:     genai.TypeObject,
		Required: []string{"summary"},
		Properties: map[string]*genai.Schema{
			"summary": {
				Type:        genai.TypeString,
				Description: "A single summary paragraph positioning the candidate for the advert.",
			},
		},
	}
}
