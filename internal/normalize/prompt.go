package normalize

// LLM prompt templates — data only, no logic.

// systemPrompt frames the model as a data-cleaning assistant. The response
// must be a strictly parseable JSON object, nothing else.
const systemPrompt = `你是一个招聘数据清洗助手，负责将原始招聘信息规范成结构化 JSON。
不要发挥想象，只根据给定内容进行合理推断。
所有数字统一用阿拉伯数字，返回的 JSON 必须能被严格解析。`

// userInstruction embeds every raw field verbatim and enumerates the exact
// output schema: field names, closed enum values and numeric-vs-null rules.
// Args: title, company, city, region, salary min, salary max, experience,
// degree, AI keywords, description.
const userInstruction = `下面是一条人工智能相关岗位的招聘数据，请你根据原始字段，输出一个结构化 JSON。

【原始数据】
- 招聘岗位：%s
- 企业名称：%s
- 工作城市：%s
- 工作区域：%s
- 最低月薪：%s
- 最高月薪：%s
- 要求经验：%s
- 学历要求：%s
- 人工智能关键词：%s
- 职位描述：%s

【字段标准化要求】

只返回一个 JSON 对象，字段必须是下面这些（不能多也不能少）：

- "title": 标准化后的岗位名称（字符串）
- "company": 企业名称（字符串）
- "city": 工作城市，尽量简化成市级，例如“北京市”统一为“北京”
- "region": 工作区域，保留原文、去掉明显噪音即可

- "salary_min": 最低月薪，整数，单位为元/月，无法确定时用 null
- "salary_max": 最高月薪，整数，单位为元/月，无法确定时用 null

- "experience_band": 经验区间，取值只能是以下之一：
  ["internship_or_new_grad","0-1y","1-3y","3-5y","5-10y","10y+","none_required"]
  说明：
    - 在校生/应届生/实习 → "internship_or_new_grad"
    - 无需经验/经验不限 → "none_required"
    - 像“1-3年”“1年及以上”统一归到最接近的区间

- "experience_years_min": 最低年限，整数，无法确定用 null
- "experience_years_max": 最高年限，整数，无法确定用 null

- "degree_level": 学历层级，取值只能是以下之一：
  ["phd","masters","bachelor","associate","below_associate","none"]
  对应关系示例：
    - 博士 → "phd"
    - 研究生/硕士 → "masters"
    - 本科/学士 → "bachelor"
    - 大专 → "associate"
    - 中技/中专/职高 → "below_associate"
    - 学历不限/无要求 → "none"

- "ai_tags": 从“人工智能关键词”字段拆分得到的字符串数组（按中文逗号、顿号、空格分割），
  去重后返回，例如 ["机器学习","深度学习","数据挖掘"]。
  优先使用该字段，若为空，可从职位描述中提取 1-5 个核心 AI 方向。

- "primary_direction": 在 ai_tags 中选一个最能代表该岗位方向的标签
  （例如“机器学习”“深度学习”“大数据处理”“机器人自动化”“无人驾驶”），
  如果没有合适的就用 "人工智能"。

- "summary": 用中文 20 个字左右概括岗位核心工作内容。

- "core_skills": 从职位描述中提取 3-8 个关键技能词的字符串数组，
  例如 ["Python","机器学习","数据挖掘"]。

【必须严格遵守】
1. 只能返回 JSON 对象本身，不要任何多余说明。
2. JSON 必须是合法的、可被严格解析。
3. 枚举字段只能取上面列出的值。`
