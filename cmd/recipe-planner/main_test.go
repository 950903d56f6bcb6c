package main

import "testing"

func TestParseMealSpec(t *testing.T) {
	tests := []struct {
		in      string
		want    mealSpec
		wantErr bool
	}{
		{"12:4", mealSpec{RecipeID: "12", Servings: 4}, false},
		{"3:2@tuesday", mealSpec{RecipeID: "3", Servings: 2, Day: "tuesday"}, false},
		{"3:2@2024-01-09", mealSpec{RecipeID: "3", Servings: 2, Day: "2024-01-09"}, false},
		{"12", mealSpec{}, true},
		{"abc:4", mealSpec{}, true},
		{"12:0", mealSpec{}, true},
		{":4@mon", mealSpec{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseMealSpec(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Expected error %v, got %v", tt.wantErr, err)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("Expected %+v, got %+v", tt.want, got)
			}
		})
	}
}
