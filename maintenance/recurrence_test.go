package maintenance

import (
	"errors"
	"reflect"
	"testing"
)

func TestProjectOccurrences(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		frequency int
		count     int
		want      []string
	}{
		{
			"month rollover",
			"2024-01-30", 1, 3,
			[]string{"2024-01-30", "2024-01-31", "2024-02-01"},
		},
		{
			"leap february",
			"2024-02-27", 1, 4,
			[]string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01"},
		},
		{
			"year rollover",
			"2023-12-20", 15, 3,
			[]string{"2023-12-20", "2024-01-04", "2024-01-19"},
		},
		{
			"weekly",
			"2024-03-04", 7, 4,
			[]string{"2024-03-04", "2024-03-11", "2024-03-18", "2024-03-25"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectOccurrences(tt.start, tt.frequency, tt.count)
			if err != nil {
				t.Fatalf("ProjectOccurrences: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

func TestProjectOccurrences_DefaultCount(t *testing.T) {
	got, err := ProjectOccurrences("2024-01-01", 30, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != DefaultOccurrences {
		t.Errorf("len = %d, want %d", len(got), DefaultOccurrences)
	}
}

// The projector is restartable: projecting twice from the same inputs
// yields the same sequence.
func TestProjectOccurrences_Restartable(t *testing.T) {
	a, _ := ProjectOccurrences("2024-01-30", 3, 5)
	b, _ := ProjectOccurrences("2024-01-30", 3, 5)
	if !reflect.DeepEqual(a, b) {
		t.Errorf("projections differ: %v vs %v", a, b)
	}
}

func TestProjectOccurrences_Invalid(t *testing.T) {
	if _, err := ProjectOccurrences("30/01/2024", 1, 3); !errors.Is(err, ErrInvalidStartDate) {
		t.Errorf("bad date: err = %v", err)
	}
	if _, err := ProjectOccurrences("2024-01-30", 0, 3); !errors.Is(err, ErrInvalidFrequency) {
		t.Errorf("zero frequency: err = %v", err)
	}
}

func TestParseFrequency(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"1 día", 1, false},
		{"15 días", 15, false},
		{"30 días", 30, false},
		{"", 0, true},
		{"cada semana", 0, true},
		{"0 días", 0, true},
		{"-3 días", 0, true},
	}
	for _, tt := range tests {
		got, err := ParseFrequency(tt.in)
		if tt.wantErr {
			if !errors.Is(err, ErrInvalidFrequency) {
				t.Errorf("ParseFrequency(%q) err = %v, want ErrInvalidFrequency", tt.in, err)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseFrequency(%q) = (%d, %v), want %d", tt.in, got, err, tt.want)
		}
	}
}

func TestFormatFrequency(t *testing.T) {
	if got := FormatFrequency(1); got != "1 día" {
		t.Errorf("FormatFrequency(1) = %q", got)
	}
	if got := FormatFrequency(15); got != "15 días" {
		t.Errorf("FormatFrequency(15) = %q", got)
	}
}
