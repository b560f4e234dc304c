package pipeline

import "testing"

func TestParseJobFacts(t *testing.T) {
	tests := []struct {
		name            string
		raw             string
		expectedTitle   string
		expectedCompany string
	}{
		{
			name:            "BothLabels",
			raw:             "Job Title: Staff Engineer\nCompany: Initech",
			expectedTitle:   "Staff Engineer",
			expectedCompany: "Initech",
		},
		{
			name:            "CompanyNotSpecified",
			raw:             "Job Title: Backend Developer\nCompany: Not specified",
			expectedTitle:   "Backend Developer",
			expectedCompany: "",
		},
		{
			name:            "NotSpecifiedAnyCase",
			raw:             "Job Title: Backend Developer\nCompany: NOT SPECIFIED in the posting",
			expectedTitle:   "Backend Developer",
			expectedCompany: "",
		},
		{
			name:            "LabelsCaseInsensitive",
			raw:             "job title: SRE\ncompany: Hooli",
			expectedTitle:   "SRE",
			expectedCompany: "Hooli",
		},
		{
			name:            "MissingTitleUsesFallback",
			raw:             "Company: Initech",
			expectedTitle:   "Position",
			expectedCompany: "Initech",
		},
		{
			name:            "UnparseableResponse",
			raw:             "I could not determine the role from the text provided.",
			expectedTitle:   "Position",
			expectedCompany: "",
		},
		{
			name:            "EmptyTitleValueUsesFallback",
			raw:             "Job Title: \nCompany: Initech",
			expectedTitle:   "Position",
			expectedCompany: "Initech",
		},
		{
			name:            "SurroundingWhitespaceTrimmed",
			raw:             "Job Title:   Data Engineer  \nCompany:   Pied Piper  ",
			expectedTitle:   "Data Engineer",
			expectedCompany: "Pied Piper",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			facts := ParseJobFacts(tt.raw, "Position")
			if facts.Title != tt.expectedTitle {
				t.Errorf("Title = %q, expected %q", facts.Title, tt.expectedTitle)
			}
			if facts.Company != tt.expectedCompany {
				t.Errorf("Company = %q, expected %q", facts.Company, tt.expectedCompany)
			}
		})
	}
}
