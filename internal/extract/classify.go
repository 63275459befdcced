package extract

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"

	"github.com/sells-group/interview-crawler/internal/model"
)

// MaxTags caps the tags assigned to one question.
const MaxTags = 3

var (
	hardTerms = []string{"实现", "原理", "底层", "源码", "优化", "架构", "设计"}
	easyTerms = []string{"什么是", "简述", "概念", "定义", "区别"}
)

// typeRules are checked in order; the first rule with a matching term wins.
var typeRules = []struct {
	label string
	terms []string
}{
	{model.TypeAlgorithm, []string{"算法", "数据结构", "排序", "链表", "二叉树", "动态规划", "复杂度", "递归", "哈希表", "堆栈", "leetcode"}},
	{model.TypeProject, []string{"项目", "经验", "负责", "难点", "亮点", "实习"}},
	{model.TypePrinciple, []string{"原理", "底层", "源码", "机制", "内部"}},
	{model.TypeSystemDesign, []string{"设计", "架构", "高并发", "分布式", "扩展性", "系统"}},
}

// companies are matched in order; longer names precede their abbreviations.
var companies = []string{
	"阿里巴巴", "阿里", "腾讯", "字节跳动", "字节", "百度", "美团", "京东", "网易",
	"快手", "拼多多", "华为", "小米", "滴滴", "蚂蚁", "携程", "哔哩哔哩", "B站",
	"微软", "谷歌", "亚马逊", "shopee", "米哈游",
}

// tagVocabulary is the ordered technology vocabulary for tagging.
var tagVocabulary = []string{
	"JavaScript", "TypeScript", "React", "Vue", "Node.js", "CSS", "HTML", "HTTP",
	"TCP", "Java", "Spring", "JVM", "Go", "Python", "C++", "MySQL", "Redis",
	"Kafka", "Docker", "Kubernetes", "Linux", "Git",
	"算法", "数据结构", "操作系统", "计算机网络", "数据库", "分布式", "微服务",
	"多线程", "并发", "设计模式", "机器学习", "深度学习",
}

// tagMatchers holds one compiled matcher per ASCII vocabulary term so that
// "Go" does not match inside "Google" and "Java" not inside "JavaScript".
var tagMatchers = compileTagMatchers(tagVocabulary)

func compileTagMatchers(vocab []string) map[string]*regexp.Regexp {
	out := make(map[string]*regexp.Regexp)
	for _, term := range vocab {
		if !isASCII(term) {
			continue
		}
		out[term] = regexp.MustCompile(`(?i)(?:^|[^A-Za-z0-9+.#])` + regexp.QuoteMeta(term) + `(?:$|[^A-Za-z0-9+#])`)
	}
	return out
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func containsAny(text string, terms []string) bool {
	for _, t := range terms {
		if strings.Contains(text, t) {
			return true
		}
	}
	return false
}

// Difficulty grades a question by keyword: hard terms win over easy terms.
func Difficulty(question string) model.Difficulty {
	switch {
	case containsAny(question, hardTerms):
		return model.DifficultyHard
	case containsAny(question, easyTerms):
		return model.DifficultyEasy
	default:
		return model.DifficultyMedium
	}
}

// Type labels a question by the first matching rule, defaulting to a
// generic technical question.
func Type(question string) string {
	lower := strings.ToLower(question)
	for _, rule := range typeRules {
		if containsAny(lower, rule.terms) {
			return rule.label
		}
	}
	return model.TypeTechnical
}

// Company returns the first known employer named in text, or "".
func Company(text string) string {
	lower := strings.ToLower(text)
	for _, c := range companies {
		if strings.Contains(lower, strings.ToLower(c)) {
			return c
		}
	}
	return ""
}

// Tags returns up to MaxTags vocabulary terms found in text, in vocabulary
// order.
func Tags(text string) []string {
	tags := make([]string, 0, MaxTags)
	for _, term := range tagVocabulary {
		if len(tags) == MaxTags {
			break
		}
		if re, ok := tagMatchers[term]; ok {
			if re.MatchString(text) {
				tags = append(tags, term)
			}
			continue
		}
		if strings.Contains(text, term) {
			tags = append(tags, term)
		}
	}
	return tags
}

func foldWidth(s string) string {
	return width.Fold.String(s)
}
