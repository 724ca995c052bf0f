package foodbridge

import (
	"reflect"
	"testing"
)

func TestParseProblem_Shapes(t *testing.T) {
	cases := []struct {
		name string
		body string
		want Problem
	}{
		{
			name: "errors map",
			body: `{"errors":{"name":"required","address":["too short","missing number"]}}`,
			want: Problem{Fields: FieldErrors{"name": "required", "address": "too short; missing number"}},
		},
		{
			name: "errors list",
			body: `{"errors":["Unauthorized"," "]}`,
			want: Problem{Messages: []string{"Unauthorized"}},
		},
		{
			name: "errors string",
			body: `{"errors":"database exploded"}`,
			want: Problem{Messages: []string{"database exploded"}},
		},
		{
			name: "bare field map",
			body: `{"email":"invalid credentials"}`,
			want: Problem{Fields: FieldErrors{"email": "invalid credentials"}},
		},
		{
			name: "message",
			body: `{"message":"Provider not found"}`,
			want: Problem{Messages: []string{"Provider not found"}},
		},
		{
			name: "top level list",
			body: `["a","b"]`,
			want: Problem{Messages: []string{"a", "b"}},
		},
		{
			name: "not json",
			body: `<html>bad gateway</html>`,
			want: Problem{},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseProblem([]byte(tc.body))
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("ParseProblem(%s) = %#v, want %#v", tc.body, got, tc.want)
			}
		})
	}
}

func TestFieldErrors_AddAppendsAndSorts(t *testing.T) {
	errs := FieldErrors{}
	errs.Add("title", "is required")
	errs.Add("quantity", "must be greater than zero")
	errs.Add("title", "too short")
	if errs["title"] != "is required; too short" {
		t.Fatalf("title = %q, want appended message", errs["title"])
	}
	if got := errs.Fields(); !reflect.DeepEqual(got, []string{"quantity", "title"}) {
		t.Fatalf("Fields = %v, want sorted", got)
	}
	if got := errs.String(); got != "quantity: must be greater than zero, title: is required; too short" {
		t.Fatalf("String = %q", got)
	}
}

func TestStatusError_Classification(t *testing.T) {
	e := &StatusError{Method: "GET", Path: "/api/providers/user/9", StatusCode: 404}
	if !e.NotFound() || e.ServerSide() {
		t.Fatalf("404 classification wrong: NotFound=%v ServerSide=%v", e.NotFound(), e.ServerSide())
	}
	if e.Error() != "api GET /api/providers/user/9 returned status 404" {
		t.Fatalf("Error = %q", e.Error())
	}
	e = &StatusError{StatusCode: 503, Problem: Problem{Messages: []string{"maintenance"}}}
	if !e.ServerSide() {
		t.Fatalf("503 should be server side")
	}
}
