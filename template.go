package datasets

import (
	"fmt"
	"maps"
	"strconv"
	"strings"
)

// FormatPath expands the placeholders of a data_path or video_path template,
// for example "data/chunk-{episode_chunk:03d}/episode_{episode_index:06d}.parquet".
//
// Supported forms are {name} and {name:[0][width]d}. "{{" and "}}" produce
// literal braces. Integer formats require an int value. Unknown names and
// unsupported format specs return an error wrapping ErrTemplate.
func FormatPath(template string, vars map[string]any) (string, error) {
	var b strings.Builder
	for i := 0; i < len(template); i++ {
		c := template[i]
		switch {
		case c == '{' && i+1 < len(template) && template[i+1] == '{':
			b.WriteByte('{')
			i++
		case c == '}' && i+1 < len(template) && template[i+1] == '}':
			b.WriteByte('}')
			i++
		case c == '{':
			end := strings.IndexByte(template[i:], '}')
			if end == -1 {
				return "", fmt.Errorf("%w: unclosed placeholder in %q", ErrTemplate, template)
			}
			s, err := expand(template[i+1:i+end], vars)
			if err != nil {
				return "", err
			}
			b.WriteString(s)
			i += end
		case c == '}':
			return "", fmt.Errorf("%w: unmatched '}' in %q", ErrTemplate, template)
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}

// expand formats one placeholder body, e.g. "episode_index:06d".
func expand(field string, vars map[string]any) (string, error) {
	name, spec, _ := strings.Cut(field, ":")
	v, ok := vars[name]
	if !ok {
		return "", fmt.Errorf("%w: no value for %q", ErrTemplate, name)
	}
	if spec == "" {
		return fmt.Sprint(v), nil
	}

	if !strings.HasSuffix(spec, "d") {
		return "", fmt.Errorf("%w: unsupported format %q for %q", ErrTemplate, spec, name)
	}
	n, ok := v.(int)
	if !ok {
		return "", fmt.Errorf("%w: %q needs an integer, got %T", ErrTemplate, name, v)
	}

	widthSpec := strings.TrimSuffix(spec, "d")
	zeroPad := strings.HasPrefix(widthSpec, "0")
	width := 0
	if widthSpec != "" {
		w, err := strconv.Atoi(widthSpec)
		if err != nil || w < 0 {
			return "", fmt.Errorf("%w: unsupported format %q for %q", ErrTemplate, spec, name)
		}
		width = w
	}
	if zeroPad {
		return fmt.Sprintf("%0*d", width, n), nil
	}
	return fmt.Sprintf("%*d", width, n), nil
}

// DataFile expands DataPath with vars.
func (i DatasetInfo) DataFile(vars map[string]any) (string, error) {
	if i.DataPath == "" {
		return "", fmt.Errorf("%w: dataset has no data_path", ErrTemplate)
	}
	return FormatPath(i.DataPath, vars)
}

// VideoFile expands VideoPath for videoKey with vars.
func (i DatasetInfo) VideoFile(videoKey string, vars map[string]any) (string, error) {
	if i.VideoPath == "" {
		return "", fmt.Errorf("%w: dataset has no video_path", ErrTemplate)
	}
	all := maps.Clone(vars)
	if all == nil {
		all = make(map[string]any, 1)
	}
	all["video_key"] = videoKey
	return FormatPath(i.VideoPath, all)
}
