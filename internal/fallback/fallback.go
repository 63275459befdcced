// Package fallback produces canned sample questions for a category when a
// live crawl finds nothing.
package fallback

import (
	"time"

	"github.com/google/uuid"

	"github.com/sells-group/interview-crawler/internal/extract"
	"github.com/sells-group/interview-crawler/internal/model"
)

// sampleCompanies are assigned to sample questions round-robin.
var sampleCompanies = []string{"阿里巴巴", "腾讯", "字节跳动", "美团", "百度", "京东"}

type bank struct {
	questions []string
	tags      [][]string
}

var banks = map[string]bank{
	model.CategoryFrontend: {
		questions: []string{
			"说说浏览器从输入 URL 到页面展示发生了什么？",
			"React 的虚拟 DOM 和 diff 算法是如何工作的？",
			"Vue 的响应式原理是什么，Vue 3 做了哪些改进？",
			"JavaScript 事件循环中宏任务和微任务的执行顺序是怎样的？",
			"如何优化首屏加载性能，有哪些常用手段？",
			"CSS 中 BFC 是什么，如何触发 BFC？",
			"HTTP 缓存中强缓存和协商缓存有什么区别？",
			"TypeScript 中 interface 和 type 的区别是什么？",
		},
		tags: [][]string{{"JavaScript", "HTTP"}, {"React"}, {"Vue"}, {"CSS", "HTML"}},
	},
	model.CategoryBackend: {
		questions: []string{
			"MySQL 的索引为什么使用 B+ 树而不是 B 树？",
			"Redis 的持久化机制 RDB 和 AOF 有什么区别？",
			"如何设计一个支持高并发的秒杀系统？",
			"说说 TCP 三次握手和四次挥手的过程。",
			"分布式事务有哪些常见的解决方案？",
			"JVM 的垃圾回收算法有哪些，G1 有什么特点？",
			"Kafka 如何保证消息不丢失和不重复消费？",
			"Go 语言中 goroutine 的调度模型是怎样的？",
		},
		tags: [][]string{{"MySQL", "数据库"}, {"Redis"}, {"分布式", "并发"}, {"Java", "JVM"}},
	},
	model.CategoryAlgorithm: {
		questions: []string{
			"如何在 O(n) 时间内找到数组中第 k 大的元素？",
			"手写快速排序并分析它的时间复杂度和稳定性。",
			"如何判断一个链表是否有环并找到环的入口？",
			"用动态规划求解最长公共子序列问题的思路是什么？",
			"二叉树的层序遍历和锯齿形遍历如何实现？",
			"LRU 缓存如何用哈希表加双向链表实现？",
		},
		tags: [][]string{{"算法"}, {"数据结构"}, {"算法", "数据结构"}},
	},
	model.CategoryTesting: {
		questions: []string{
			"如何为一个登录功能设计完整的测试用例？",
			"接口自动化测试框架通常包含哪些模块？",
			"性能测试中 TPS 和响应时间的关系是什么？",
			"单元测试、集成测试和端到端测试有什么区别？",
			"如何在持续集成流程中落地自动化测试？",
		},
		tags: [][]string{{"Python"}, {"Linux", "Git"}, {"HTTP"}},
	},
	model.CategoryProduct: {
		questions: []string{
			"如何衡量一个新功能上线后的效果？",
			"请介绍一个你主导过的产品从需求到上线的过程。",
			"如何平衡用户需求和商业目标之间的冲突？",
			"设计一个外卖平台的会员体系需要考虑哪些因素？",
			"如何进行竞品分析并输出有效结论？",
		},
		tags: [][]string{{"数据库"}, {"设计模式"}},
	},
	model.CategoryData: {
		questions: []string{
			"如何设计 A/B 测试并判断结果是否显著？",
			"SQL 中窗口函数有哪些常见的使用场景？",
			"用户留存率下降了应该如何拆解分析？",
			"常用的数据清洗方法有哪些，如何处理缺失值？",
			"如何搭建一套核心业务指标体系？",
		},
		tags: [][]string{{"MySQL", "数据库"}, {"Python"}, {"机器学习"}},
	},
	model.CategoryDevOps: {
		questions: []string{
			"Kubernetes 中 Pod 的调度过程是怎样的？",
			"Docker 镜像分层的原理是什么，如何减小镜像体积？",
			"线上服务 CPU 飙高应该如何排查定位？",
			"如何设计一个高可用的 CI/CD 发布流程？",
			"Linux 中如何查看端口占用和网络连接状态？",
		},
		tags: [][]string{{"Kubernetes", "Docker"}, {"Linux"}, {"Git", "微服务"}},
	},
	model.CategoryMobile: {
		questions: []string{
			"Android 中 Activity 的启动模式有哪些区别？",
			"iOS 中 RunLoop 的作用和工作原理是什么？",
			"移动端如何做启动速度优化和包体积优化？",
			"Flutter 的渲染流程和 Widget 树是怎样的？",
			"如何排查和解决移动端的内存泄漏问题？",
		},
		tags: [][]string{{"Java"}, {"多线程", "并发"}, {"设计模式"}},
	},
}

var genericBank = bank{
	questions: []string{
		"请介绍一个你最有成就感的项目以及其中的难点。",
		"你是如何学习一门新技术并把它用到工作中的？",
		"遇到线上故障时你通常的排查思路是什么？",
		"说说你对代码评审的理解以及你关注哪些问题？",
		"如何在团队协作中推动技术方案落地？",
	},
	tags: [][]string{{"Git"}, {"设计模式"}, {"Linux"}},
}

// Generate returns up to count sample questions for category. Unknown
// categories use a generic list. Every question carries the sample source.
func Generate(category string, count int) []model.CrawledQuestion {
	if count <= 0 {
		return nil
	}
	b, ok := banks[category]
	if !ok {
		b = genericBank
	}
	if count > len(b.questions) {
		count = len(b.questions)
	}

	now := time.Now().UTC()
	out := make([]model.CrawledQuestion, 0, count)
	for i, text := range b.questions[:count] {
		tags := append([]string(nil), b.tags[i%len(b.tags)]...)
		out = append(out, model.CrawledQuestion{
			ID:         uuid.NewString(),
			Question:   text,
			Category:   category,
			Difficulty: extract.Difficulty(text),
			Type:       extract.Type(text),
			Source:     model.SampleSource,
			Company:    sampleCompanies[i%len(sampleCompanies)],
			Tags:       tags,
			CrawledAt:  now,
		})
	}
	return out
}
