package handler

import (
	"encoding/json"
	"regexp"
	"strings"
)

// multipart 表单里 categories/tags/variants 以 JSON 字符串到达，
// JSON 请求体里则是原生数组。这里统一归一化，解析失败一律按空值处理
// (fail closed)，由上层的必填校验兜底。

// variantInput 尺码输入，inStock/stockQuantity 缺省时走默认值
type variantInput struct {
	Size          int   `json:"size"`
	InStock       *bool `json:"inStock"`
	StockQuantity *int  `json:"stockQuantity"`
}

// imageURLInput 预上传图片，接受 {url, altText} 对象或纯 URL 字符串
type imageURLInput struct {
	URL     string `json:"url"`
	AltText string `json:"altText"`
}

// parseStringList 既接受 ["a","b"]，也接受单个字符串
func parseStringList(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var list []string
	if err := json.Unmarshal([]byte(raw), &list); err == nil {
		return list
	}
	return nil
}

// resolveCategories 分类归一化：categories 数组优先，解析不出来退回单值
// 的 legacy category 字段，再不行就是空列表 (触发上层校验失败)
func resolveCategories(categoriesRaw, legacy string) []string {
	if list := parseStringList(categoriesRaw); len(list) > 0 {
		out := make([]string, 0, len(list))
		for _, c := range list {
			if c = strings.TrimSpace(c); c != "" {
				out = append(out, c)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	if legacy = strings.TrimSpace(legacy); legacy != "" {
		return []string{legacy}
	}
	return nil
}

// parseVariants 第二个返回值表示字段是否出现过：
// 更新时 "没传 variants" 和 "传了空数组" 是两种不同契约
func parseVariants(raw string) ([]variantInput, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, false
	}
	var list []variantInput
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		return nil, false
	}
	return list, true
}

// parseImageURLs 接受对象数组或字符串数组两种形态
func parseImageURLs(raw string) []imageURLInput {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var objs []imageURLInput
	if err := json.Unmarshal([]byte(raw), &objs); err == nil {
		out := objs[:0]
		for _, o := range objs {
			if strings.TrimSpace(o.URL) != "" {
				out = append(out, o)
			}
		}
		return out
	}
	var urls []string
	if err := json.Unmarshal([]byte(raw), &urls); err == nil {
		out := make([]imageURLInput, 0, len(urls))
		for _, u := range urls {
			if strings.TrimSpace(u) != "" {
				out = append(out, imageURLInput{URL: u})
			}
		}
		return out
	}
	return nil
}

// parseUintList 图片删除列表，["1","2"] 和 [1,2] 都接受
func parseUintList(raw string) []uint {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var nums []uint
	if err := json.Unmarshal([]byte(raw), &nums); err == nil {
		return nums
	}
	var strs []string
	if err := json.Unmarshal([]byte(raw), &strs); err == nil {
		out := make([]uint, 0, len(strs))
		for _, s := range strs {
			var n uint
			if err := json.Unmarshal([]byte(s), &n); err == nil {
				out = append(out, n)
			}
		}
		return out
	}
	return nil
}

// parseTags 读路径上的防御性解析：坏数据按空数组处理，不让请求失败
func parseTags(raw string) []string {
	if list := parseStringList(raw); list != nil {
		return list
	}
	return []string{}
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// slugify 小写、非字母数字折叠成连字符、去首尾连字符
func slugify(name string) string {
	s := nonAlnum.ReplaceAllString(strings.ToLower(name), "-")
	return strings.Trim(s, "-")
}

// dedupeVariants 按尺码去重，首个出现的保留
func dedupeVariants(in []variantInput) []variantInput {
	seen := make(map[int]bool, len(in))
	out := make([]variantInput, 0, len(in))
	for _, v := range in {
		if v.Size == 0 || seen[v.Size] {
			continue
		}
		seen[v.Size] = true
		out = append(out, v)
	}
	return out
}
