package encoding

import "testing"

func TestStdBase64Data_String(t *testing.T) {
	if got, want := StdBase64Data("hello world").String(), "aGVsbG8gd29ybGQ="; got != want {
		t.Errorf("String = %q, want %q", got, want)
	}
	if got := StdBase64Data(nil).String(); got != "" {
		t.Errorf("String of nil = %q, want empty", got)
	}
}

func TestStdBase64Data_DataURL(t *testing.T) {
	got := StdBase64Data("hi").DataURL("image/png")
	if want := "data:image/png;base64,aGk="; got != want {
		t.Errorf("DataURL = %q, want %q", got, want)
	}
}
