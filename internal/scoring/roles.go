// Package scoring turns repository and account data into a weighted profile
// score for a target job role, plus actionable recommendations.
package scoring

import (
	"sort"

	"github.com/gosimple/slug"
)

// RoleProfile describes what a job role values in a GitHub profile.
// Language weights are relative; higher means a stronger signal for the role.
type RoleProfile struct {
	Key       string
	Title     string
	Languages map[string]float64
	Topics    []string
}

var roleProfiles = map[string]RoleProfile{
	"backend-developer": {
		Key:   "backend-developer",
		Title: "Backend Developer",
		Languages: map[string]float64{
			"Go": 1.0, "Java": 1.0, "Python": 0.9, "Ruby": 0.8,
			"Rust": 0.9, "C#": 0.9, "PHP": 0.7, "Kotlin": 0.8,
			"SQL": 0.6, "PLpgSQL": 0.5,
		},
		Topics: []string{"api", "database", "microservices", "grpc", "rest", "backend"},
	},
	"frontend-developer": {
		Key:   "frontend-developer",
		Title: "Frontend Developer",
		Languages: map[string]float64{
			"JavaScript": 1.0, "TypeScript": 1.0, "HTML": 0.7,
			"CSS": 0.7, "SCSS": 0.6, "Vue": 0.9, "Svelte": 0.9,
		},
		Topics: []string{"react", "vue", "frontend", "ui", "css", "web"},
	},
	"fullstack-developer": {
		Key:   "fullstack-developer",
		Title: "Full Stack Developer",
		Languages: map[string]float64{
			"JavaScript": 1.0, "TypeScript": 1.0, "Python": 0.9,
			"Go": 0.9, "Java": 0.8, "Ruby": 0.8, "HTML": 0.5, "CSS": 0.5,
		},
		Topics: []string{"web", "api", "fullstack", "react", "database"},
	},
	"data-engineer": {
		Key:   "data-engineer",
		Title: "Data Engineer",
		Languages: map[string]float64{
			"Python": 1.0, "Scala": 0.9, "SQL": 0.9, "Java": 0.7,
			"R": 0.6, "Jupyter Notebook": 0.8, "Go": 0.5,
		},
		Topics: []string{"data", "etl", "spark", "airflow", "analytics", "pipeline"},
	},
	"devops-engineer": {
		Key:   "devops-engineer",
		Title: "DevOps Engineer",
		Languages: map[string]float64{
			"Go": 1.0, "Python": 0.9, "Shell": 0.9, "HCL": 1.0,
			"Dockerfile": 0.8, "Makefile": 0.5, "YAML": 0.5,
		},
		Topics: []string{"kubernetes", "docker", "terraform", "ci", "infrastructure", "devops"},
	},
}

// defaultRole is used when the requested role is not recognized. It weighs
// every language equally so the score still reflects activity and reach.
var defaultRole = RoleProfile{
	Key:   "software-engineer",
	Title: "Software Engineer",
}

// RoleFor resolves a free-form job role string to a known role profile.
// The second return is false when the role fell back to the generic profile.
func RoleFor(jobRole string) (RoleProfile, bool) {
	key := slug.Make(jobRole)
	if profile, ok := roleProfiles[key]; ok {
		return profile, true
	}
	// Common aliases map onto the canonical keys.
	switch key {
	case "backend-engineer", "backend":
		return roleProfiles["backend-developer"], true
	case "frontend-engineer", "frontend":
		return roleProfiles["frontend-developer"], true
	case "fullstack-engineer", "full-stack-developer", "fullstack":
		return roleProfiles["fullstack-developer"], true
	case "data-scientist":
		return roleProfiles["data-engineer"], true
	case "sre", "site-reliability-engineer", "platform-engineer":
		return roleProfiles["devops-engineer"], true
	}

	fallback := defaultRole
	if jobRole != "" {
		fallback.Title = jobRole
		fallback.Key = key
	}
	return fallback, false
}

// Roles lists the known role profiles in a stable order
func Roles() []RoleProfile {
	keys := make([]string, 0, len(roleProfiles))
	for k := range roleProfiles {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	roles := make([]RoleProfile, 0, len(keys))
	for _, k := range keys {
		roles = append(roles, roleProfiles[k])
	}
	return roles
}
