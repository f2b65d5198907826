package subtitle

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    []Entry
		wantErr bool
	}{
		{
			name: "singleEntry",
			raw:  `[{"id":1,"startTime":"00:00:01,000","endTime":"00:00:02,500","text":"hello"}]`,
			want: []Entry{{ID: 1, StartTime: "00:00:01,000", EndTime: "00:00:02,500", Text: "hello"}},
		},
		{
			name: "keepsSourceOrder",
			raw: `[
				{"id":2,"startTime":"00:00:03,000","endTime":"00:00:04,000","text":"second"},
				{"id":1,"startTime":"00:00:01,000","endTime":"00:00:02,000","text":"first"},
				{"id":1,"startTime":"00:00:01,000","endTime":"00:00:02,000","text":"first"}
			]`,
			want: []Entry{
				{ID: 2, StartTime: "00:00:03,000", EndTime: "00:00:04,000", Text: "second"},
				{ID: 1, StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "first"},
				{ID: 1, StartTime: "00:00:01,000", EndTime: "00:00:02,000", Text: "first"},
			},
		},
		{
			name: "myanmarText",
			raw:  `[{"id":1,"startTime":"00:00:00,000","endTime":"00:00:01,200","text":"ဟုတ်တယ်နော်"}]`,
			want: []Entry{{ID: 1, StartTime: "00:00:00,000", EndTime: "00:00:01,200", Text: "ဟုတ်တယ်နော်"}},
		},
		{name: "emptyString", raw: "", want: []Entry{}},
		{name: "whitespaceOnly", raw: "  \n\t ", want: []Entry{}},
		{name: "emptyArray", raw: "[]", want: []Entry{}},
		{name: "notValidJSON", raw: "{not valid", wantErr: true},
		{name: "object", raw: `{"id":1}`, wantErr: true},
		{name: "null", raw: "null", wantErr: true},
		{name: "unterminatedArray", raw: `[{"id":1,"startTime":"a","endTime":"b","text":"c"}`, wantErr: true},
		{name: "missingText", raw: `[{"id":1,"startTime":"00:00:01,000","endTime":"00:00:02,000"}]`, wantErr: true},
		{name: "missingID", raw: `[{"startTime":"00:00:01,000","endTime":"00:00:02,000","text":"x"}]`, wantErr: true},
		{name: "nullField", raw: `[{"id":1,"startTime":null,"endTime":"00:00:02,000","text":"x"}]`, wantErr: true},
		{name: "idAsString", raw: `[{"id":"1","startTime":"00:00:01,000","endTime":"00:00:02,000","text":"x"}]`, wantErr: true},
		{name: "fractionalID", raw: `[{"id":1.5,"startTime":"00:00:01,000","endTime":"00:00:02,000","text":"x"}]`, wantErr: true},
		{name: "textAsNumber", raw: `[{"id":1,"startTime":"00:00:01,000","endTime":"00:00:02,000","text":5}]`, wantErr: true},
		{name: "unknownField", raw: `[{"id":1,"startTime":"00:00:01,000","endTime":"00:00:02,000","text":"x","speaker":"A"}]`, wantErr: true},
		{name: "nonObjectElement", raw: `[1,2]`, wantErr: true},
		{name: "trailingData", raw: `[] []`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Parse() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				if !errors.Is(err, ErrMalformed) {
					t.Errorf("Parse() error = %v, want ErrMalformed", err)
				}
				if got != nil {
					t.Errorf("Parse() returned %v alongside an error", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Parse() returned nil slice, want empty or populated slice")
			}
			if len(got) != len(tt.want) {
				t.Fatalf("Parse() returned %d entries, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("entry %d = %+v, want %+v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestParseLimited(t *testing.T) {
	var sb strings.Builder
	sb.WriteString("[")
	for i := 1; i <= 5; i++ {
		if i > 1 {
			sb.WriteString(",")
		}
		fmt.Fprintf(&sb, `{"id":%d,"startTime":"00:00:0%d,000","endTime":"00:00:0%d,500","text":"t"}`, i, i, i)
	}
	sb.WriteString("]")

	if _, err := ParseLimited(sb.String(), 4); !errors.Is(err, ErrMalformed) {
		t.Errorf("ParseLimited(max=4) error = %v, want ErrMalformed", err)
	}

	got, err := ParseLimited(sb.String(), 5)
	if err != nil {
		t.Fatalf("ParseLimited(max=5) error = %v", err)
	}
	if len(got) != 5 {
		t.Errorf("ParseLimited(max=5) returned %d entries, want 5", len(got))
	}

	if _, err := ParseLimited(sb.String(), 0); err != nil {
		t.Errorf("ParseLimited(max=0) error = %v, want unlimited", err)
	}
}

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		in      string
		wantMS  int64
		wantErr bool
	}{
		{in: "00:00:01,200", wantMS: 1200},
		{in: "00:00:01.200", wantMS: 1200},
		{in: "01:02:03,004", wantMS: 3723004},
		{in: " 00:00:00,000 ", wantMS: 0},
		{in: "00:00:01", wantErr: true},
		{in: "00:00:01,2", wantErr: true},
		{in: "00:61:00,000", wantErr: true},
		{in: "aa:00:00,000", wantErr: true},
		{in: "00:00:01,2x0", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseTimestamp(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseTimestamp(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && got.Milliseconds() != tt.wantMS {
				t.Errorf("ParseTimestamp(%q) = %dms, want %dms", tt.in, got.Milliseconds(), tt.wantMS)
			}
		})
	}
}

func TestFormatTimestampRoundTrip(t *testing.T) {
	for _, ts := range []string{"00:00:00,000", "00:00:01,200", "01:02:03,004", "10:59:59,999"} {
		d, err := ParseTimestamp(ts)
		if err != nil {
			t.Fatalf("ParseTimestamp(%q) error = %v", ts, err)
		}
		if got := FormatTimestamp(d); got != ts {
			t.Errorf("FormatTimestamp(ParseTimestamp(%q)) = %q", ts, got)
		}
	}
}
