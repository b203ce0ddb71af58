package datasets

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Dataset hosts serve info.json files written by several generations of
// tooling. Decoding is lenient: a field of an unexpected JSON type decodes to
// its zero value instead of failing the whole document. Numbers written as
// floats ("50.0") or strings ("30") are accepted for numeric fields.

// UnmarshalJSON decodes an info.json document. It fails only when data is not
// a JSON object.
func (i *DatasetInfo) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*i = infoFromFields(fields)
	return nil
}

// UnmarshalJSON decodes one entry of the features object.
func (f *Feature) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	*f = featureFromFields(fields)
	return nil
}

func infoFromFields(fields map[string]json.RawMessage) DatasetInfo {
	info := DatasetInfo{
		CodebaseVersion:    decodeString(fields["codebase_version"]),
		TotalEpisodes:      decodeInt(fields["total_episodes"]),
		TotalFrames:        decodeInt(fields["total_frames"]),
		TotalTasks:         decodeInt(fields["total_tasks"]),
		TotalVideos:        decodeInt(fields["total_videos"]),
		TotalChunks:        decodeInt(fields["total_chunks"]),
		ChunksSize:         decodeInt(fields["chunks_size"]),
		DataFilesSizeInMB:  decodeFloat(fields["data_files_size_in_mb"]),
		VideoFilesSizeInMB: decodeFloat(fields["video_files_size_in_mb"]),
		FPS:                decodeFloat(fields["fps"]),
		DataPath:           decodeString(fields["data_path"]),
		VideoPath:          decodeString(fields["video_path"]),
	}

	var robot string
	if json.Unmarshal(fields["robot_type"], &robot) == nil && !isNull(fields["robot_type"]) {
		info.RobotType = &robot
	}

	var splits map[string]json.RawMessage
	if json.Unmarshal(fields["splits"], &splits) == nil && splits != nil {
		info.Splits = make(map[string]string, len(splits))
		for name, raw := range splits {
			info.Splits[name] = decodeString(raw)
		}
	}

	var features map[string]json.RawMessage
	if json.Unmarshal(fields["features"], &features) == nil && features != nil {
		info.Features = make(map[string]Feature, len(features))
		for name, raw := range features {
			var ff map[string]json.RawMessage
			json.Unmarshal(raw, &ff) // non-object entries decode as an empty Feature
			info.Features[name] = featureFromFields(ff)
		}
	}

	return info
}

func featureFromFields(fields map[string]json.RawMessage) Feature {
	f := Feature{Dtype: decodeString(fields["dtype"])}

	var shape []json.RawMessage
	if json.Unmarshal(fields["shape"], &shape) == nil && shape != nil {
		f.Shape = make([]int, len(shape))
		for i, raw := range shape {
			f.Shape[i] = decodeInt(raw)
		}
	}

	if raw, ok := fields["names"]; ok {
		json.Unmarshal(raw, &f.Names)
	}
	json.Unmarshal(fields["info"], &f.Info)

	return f
}

// featuresPresent reports whether the features field of an info.json
// document holds a value. Absent, null, false, zero and empty-string values
// count as missing; any object or array counts as present.
func featuresPresent(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || isNull(raw) {
		return false
	}
	switch raw[0] {
	case '{', '[':
		return true
	case '"':
		return decodeString(raw) != ""
	case 't':
		return true
	case 'f':
		return false
	}
	n, err := strconv.ParseFloat(string(raw), 64)
	return err != nil || n != 0
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(bytes.TrimSpace(raw)) == "null"
}

// decodeString returns a JSON string's value, or the literal text of a number
// or boolean. Other values decode as "".
func decodeString(raw json.RawMessage) string {
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var n json.Number
	if json.Unmarshal(raw, &n) == nil {
		return n.String()
	}
	var b bool
	if json.Unmarshal(raw, &b) == nil {
		return strconv.FormatBool(b)
	}
	return ""
}

// decodeFloat accepts a JSON number or a numeric string.
func decodeFloat(raw json.RawMessage) float64 {
	var f float64
	if json.Unmarshal(raw, &f) == nil {
		return f
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

// decodeInt accepts anything decodeFloat does, truncating toward zero.
func decodeInt(raw json.RawMessage) int {
	return int(decodeFloat(raw))
}
