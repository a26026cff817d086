package handler

import "testing"

func TestLocalizeMessage(t *testing.T) {
	tests := []struct {
		name     string
		language string
		input    string
		want     string
	}{
		{name: "zh to en", language: "en", input: "习惯不存在", want: "Habit not found"},
		{name: "zh stays", language: "zh", input: "习惯不存在", want: "习惯不存在"},
		{name: "unknown stays", language: "en", input: "自定义提示", want: "自定义提示"},
		{name: "empty", language: "en", input: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := localizeMessage(tt.language, tt.input); got != tt.want {
				t.Fatalf("localizeMessage(%q, %q) = %q, want %q", tt.language, tt.input, got, tt.want)
			}
		})
	}
}
