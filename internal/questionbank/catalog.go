package questionbank

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/spigell/hh-interviewer/internal/interview"
)

// Catalog maps role and difficulty to the prompts of that bucket.
type Catalog map[interview.Role]map[interview.Difficulty][]string

// DefaultCatalog returns the built-in questions.
func DefaultCatalog() Catalog {
	return Catalog{
		interview.RoleEngineer: {
			interview.DifficultyEasy: {
				"Tell me about yourself and your experience with software development.",
				"What programming languages are you most comfortable with?",
				"Describe your experience with version control systems like Git.",
			},
			interview.DifficultyMedium: {
				"Describe a challenging project you worked on and how you solved it.",
				"How do you approach debugging a complex issue?",
				"What's your approach to code review and collaboration?",
				"How do you stay updated with new technologies?",
			},
			interview.DifficultyHard: {
				"Design a scalable system architecture for handling 1 million requests per second.",
				"Explain how you would optimize a slow database query affecting production.",
				"Describe a time when you had to make a critical technical decision under pressure.",
				"How would you handle a security vulnerability discovered in production code?",
			},
		},
		interview.RoleSales: {
			interview.DifficultyEasy: {
				"Tell me about yourself and your sales experience.",
				"How do you approach building relationships with new clients?",
				"What motivates you in a sales role?",
			},
			interview.DifficultyMedium: {
				"Describe a time when you closed a difficult sale.",
				"How do you handle rejection in sales?",
				"What's your strategy for identifying potential customers?",
				"How do you prioritize your leads and manage your sales pipeline?",
			},
			interview.DifficultyHard: {
				"Describe a situation where you had to overcome a major customer objection that seemed insurmountable.",
				"How would you approach a client who has been with a competitor for 10 years?",
				"Explain your strategy for negotiating a complex multi-year enterprise deal.",
				"How do you handle a situation where a client threatens to leave due to pricing?",
			},
		},
		interview.RoleRetail: {
			interview.DifficultyEasy: {
				"Tell me about yourself and why you're interested in retail.",
				"How would you handle a difficult or angry customer?",
				"What does excellent customer service mean to you?",
			},
			interview.DifficultyMedium: {
				"Describe your experience with cash handling and point-of-sale systems.",
				"How do you stay motivated during slow periods?",
				"How do you approach upselling products to customers?",
				"Describe a time when you had to work as part of a team.",
			},
			interview.DifficultyHard: {
				"What would you do if you noticed a customer shoplifting?",
				"Describe how you would handle a situation where multiple customers need assistance simultaneously.",
				"How would you deal with a product return request that doesn't meet store policy?",
				"Explain your approach to handling inventory discrepancies during a busy holiday season.",
			},
		},
	}
}

// LoadCatalog reads a YAML catalog of the form
//
//	engineer:
//	  easy: ["..."]
//	  medium: ["..."]
//	  hard: ["..."]
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read question catalog %q: %w", path, err)
	}

	var raw map[string]map[string][]string
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse question catalog %q: %w", path, err)
	}

	catalog := make(Catalog, len(raw))
	for roleName, buckets := range raw {
		role, err := interview.ParseRole(roleName)
		if err != nil {
			return nil, err
		}
		catalog[role] = make(map[interview.Difficulty][]string, len(buckets))
		for difficultyName, questions := range buckets {
			difficulty, err := interview.ParseDifficulty(difficultyName)
			if err != nil {
				return nil, err
			}
			catalog[role][difficulty] = questions
		}
	}

	if err := catalog.Validate(); err != nil {
		return nil, fmt.Errorf("question catalog %q: %w", path, err)
	}

	return catalog, nil
}

// Validate requires a non-empty bucket for every role and difficulty.
func (c Catalog) Validate() error {
	for _, role := range interview.Roles {
		for _, difficulty := range interview.Difficulties {
			if len(c[role][difficulty]) == 0 {
				return fmt.Errorf("bucket %s/%s is empty", role, difficulty)
			}
		}
	}
	return nil
}
