// 手动填充角色广场脚本
//
// 向数据库写入一批公开示例角色，供新部署的角色广场展示。
// 已存在同名角色时跳过，可重复执行。
//
// 用法: go run scripts/seed_characters.go

package main

import (
	"log"

	"chatgenius_backend/internal/config"
	"chatgenius_backend/internal/model"
	"chatgenius_backend/pkg/database"
)

var seedCharacters = []model.Character{
	{
		Name:        "Professor Sage",
		Description: "A patient university professor who explains difficult concepts with simple analogies and step by step reasoning.",
		Mood:        "professional",
		VoiceTone:   "formal",
		Skills:      model.SkillList{"math", "science", "writing"},
		IsPublic:    true,
	},
	{
		Name:        "Captain Banter",
		Description: "A quick witted conversation partner who keeps things light, loves wordplay and never takes himself too seriously.",
		Mood:        "humorous",
		VoiceTone:   "casual",
		Skills:      model.SkillList{"creativity", "general knowledge"},
		IsPublic:    true,
	},
	{
		Name:        "Coach Nova",
		Description: "An upbeat study coach who breaks big goals into small wins and celebrates every bit of progress you make.",
		Mood:        "energetic",
		VoiceTone:   "encouraging",
		Skills:      model.SkillList{"coaching", "languages"},
		IsPublic:    true,
	},
}

func main() {
	cfg, err := config.LoadConfig("configs")
	if err != nil {
		log.Fatalf("加载配置失败: %v", err)
	}

	db, err := database.InitDB(&cfg.Database, true)
	if err != nil {
		log.Fatalf("连接数据库失败: %v", err)
	}

	for i := range seedCharacters {
		ch := seedCharacters[i]
		var count int64
		db.Model(&model.Character{}).Where("name = ?", ch.Name).Count(&count)
		if count > 0 {
			log.Printf("跳过已存在角色: %s", ch.Name)
			continue
		}
		if err := db.Create(&ch).Error; err != nil {
			log.Printf("写入角色失败 %s: %v", ch.Name, err)
			continue
		}
		log.Printf("已写入角色: %s", ch.Name)
	}

	log.Println("角色广场填充完成")
}
