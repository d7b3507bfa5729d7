package aggregate

// City→macro-region lookup. Static dictionary data owned by the engine;
// closed-set membership per region with a catch-all for unmapped cities.

// RegionOther is the catch-all macro-region for unmapped cities.
const RegionOther = "其他地区"

var macroRegions = map[string][]string{
	"华东": {
		"上海", "南京", "苏州", "杭州", "宁波", "无锡", "常州", "南通", "扬州", "镇江",
		"嘉兴", "湖州", "绍兴", "台州", "温州",
		"合肥", "芜湖", "马鞍山", "蚌埠", "安庆", "阜阳",
		"福州", "厦门", "泉州", "莆田", "龙岩",
		"济南", "青岛", "烟台", "威海", "淄博", "潍坊", "临沂", "济宁", "泰安", "东营", "滨州", "德州",
	},
	"华南": {
		"广州", "深圳", "东莞", "佛山", "中山", "珠海", "惠州", "江门", "肇庆", "汕头", "湛江", "茂名",
		"南宁", "柳州", "桂林", "北海", "玉林",
		"海口", "三亚",
		"昆明", "曲靖", "大理", "红河", "玉溪",
	},
	"华北": {
		"北京", "天津", "石家庄", "唐山", "保定", "秦皇岛", "廊坊", "邯郸", "沧州", "承德",
		"太原", "大同", "长治", "晋中", "运城",
	},
	"东北": {
		"沈阳", "大连", "长春", "哈尔滨", "吉林", "鞍山", "抚顺", "营口", "盘锦", "本溪", "四平",
	},
	"华中": {
		"武汉", "长沙", "郑州", "南昌", "襄阳", "宜昌", "洛阳", "新乡", "信阳", "九江", "赣州",
	},
	"西南": {
		"成都", "重庆", "贵阳", "拉萨", "绵阳", "南充", "乐山", "泸州", "德阳",
	},
	"西北": {
		"西安", "兰州", "银川", "乌鲁木齐", "西宁", "榆林", "咸阳", "宝鸡",
	},
}

// cityRegion is the flattened city → region index.
var cityRegion = func() map[string]string {
	m := make(map[string]string)
	for region, cities := range macroRegions {
		for _, city := range cities {
			m[city] = region
		}
	}
	return m
}()

// MacroRegion maps a city to its macro-region, RegionOther when unmapped.
func MacroRegion(city string) string {
	if r, ok := cityRegion[city]; ok {
		return r
	}
	return RegionOther
}
