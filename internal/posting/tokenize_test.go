package posting

import (
	"reflect"
	"testing"
)

func TestSplitTags(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{
			name: "mixed delimiters",
			in:   "Python、机器学习, SQL ",
			want: []string{"Python", "机器学习", "SQL"},
		},
		{
			name: "semicolons and slashes",
			in:   "TensorFlow;PyTorch/Keras",
			want: []string{"TensorFlow", "PyTorch", "Keras"},
		},
		{
			name: "full-width punctuation",
			in:   "深度学习，数据挖掘；NLP",
			want: []string{"深度学习", "数据挖掘", "NLP"},
		},
		{
			name: "runs of delimiters",
			in:   "a、、 ,b",
			want: []string{"a", "b"},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
		{
			name: "only delimiters",
			in:   "、, ; ",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SplitTags(tt.in)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("SplitTags(%q) = %v, want %v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDedup(t *testing.T) {
	got := Dedup([]string{"Python", "SQL", "Python", "机器学习", "SQL"})
	want := []string{"Python", "SQL", "机器学习"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Dedup() = %v, want %v", got, want)
	}
	if Dedup(nil) != nil {
		t.Error("Dedup(nil) should be nil")
	}
}

func TestMonthKey(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2024-03-15", "2024-03"},
		{"2024/03/15", "2024-03"},
		{"2024-03-15 10:30:00", "2024-03"},
		{"2024年3月5日", "2024-03"},
		{"2024-03", "2024-03"},
		{"not a date", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := MonthKey(tt.in); got != tt.want {
			t.Errorf("MonthKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
