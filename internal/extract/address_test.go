package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCityFromAddress(t *testing.T) {
	tests := []struct {
		address string
		want    string
	}{
		{"青岛市市南区登州路56号", "青岛市"},
		{"山东省潍坊市高新区健康东街", "潍坊市"},
		{"北京市朝阳区建国路88号", "北京市"},
		{"重庆市渝北区龙溪街道", "重庆市"},
		{"香港中环干诺道中1号", "香港"},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, CityFromAddress(tt.address), "address %q", tt.address)
	}
}

func TestCityFromAddressRejectsCompanyFragments(t *testing.T) {
	// "…公司市场部" matches the generic city pattern but is not a city.
	assert.Equal(t, "", CityFromAddress("海尔集团公司市场部"))
}

func TestAddressQueries(t *testing.T) {
	got := AddressQueries("青岛啤酒股份有限公司")
	assert.Equal(t, []string{
		"青岛啤酒股份有限公司 注册地址",
		"青岛啤酒股份有限公司 公司地址",
		"青岛啤酒股份有限公司 总部地址",
		"青岛啤酒股份有限公司 办公地址",
	}, got)
}

func TestAddressFromContent(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name:    "registered address",
			content: "注册地址：青岛市市南区登州路56号",
			want:    "青岛市市南区登州路56号",
		},
		{
			name:    "located-at phrasing",
			content: "公司位于青岛市崂山区海尔路1号工业园区内",
			want:    "青岛市崂山区海尔路1号工业园区内",
		},
		{
			name:    "change notice outranks registered address",
			content: "注册地址：莱西市水集街道1号。总部迁至青岛市崂山区海尔路1号大厦",
			want:    "青岛市崂山区海尔路1号大厦",
		},
		{
			name:    "stale match skipped",
			content: "地址：已迁出青岛市市南区登州路56号",
			want:    "",
		},
		{
			name:    "too short to be an address",
			content: "地址：市区",
			want:    "",
		},
		{
			name:    "nothing address-like",
			content: "青岛啤酒成立于1903年",
			want:    "",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddressFromContent(tt.content, "青岛啤酒股份有限公司"))
		})
	}
}
