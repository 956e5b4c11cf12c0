package utils

import (
	"math/rand"
	"strconv"
)

var letters = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ")
var digits = "0123456789"

func GenerateRandomID(letterLength int, digitLength int) string {
	randomID := make([]rune, letterLength+digitLength)
	for i := range randomID {
		if i < letterLength {
			randomID[i] = letters[rand.Intn(len(letters))]
		} else {
			randomID[i] = rune(digits[rand.Intn(len(digits))])
		}
	}
	return string(randomID)
}

var cakeFlavors = []string{
	"草莓", "巧克力", "抹茶", "芒果", "香草", "芝士", "蓝莓", "红丝绒", "提拉米苏", "黑森林",
}

// GenerateRandomInstanceName 生成形如 "抹茶蛋糕-abc123" 的实例名称
func GenerateRandomInstanceName() string {
	flavor := cakeFlavors[rand.Intn(len(cakeFlavors))]
	return flavor + "蛋糕-" + GenerateRandomID(3, 3)
}

func GenerateRandomInstanceDescription(atoms int, agents int) string {
	return "随机生成的实例，" + strconv.Itoa(atoms) + " 个原子，" + strconv.Itoa(agents) + " 个参与者"
}
