package main

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/gentlehabits/internal/config"
	"github.com/gentlehabits/internal/db"
	"github.com/gentlehabits/internal/service"
	"gorm.io/gorm"
)

// 演示数据覆盖的天数
const seedDays = 21

var errAlreadySeeded = errors.New("habits already exist")

type seedResult struct {
	Habits  int
	Entries int
}

// 测试数据生成器
func main() {
	cfg, err := config.Load("")
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	result, err := seedDemoData(db.DB, time.Now())
	if errors.Is(err, errAlreadySeeded) {
		fmt.Println("习惯已存在，跳过创建")
		return
	}
	if err != nil {
		log.Fatal("生成测试数据失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Printf("习惯: %d 个\n", result.Habits)
	fmt.Printf("打卡: %d 条\n", result.Entries)
}

// seedDemoData 以 now 为“今天”，生成三周前创建的一组习惯及其打卡
func seedDemoData(gdb *gorm.DB, now time.Time) (*seedResult, error) {
	var count int64
	if err := gdb.Model(&db.Habit{}).Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, errAlreadySeeded
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	created := today.AddDate(0, 0, -seedDays)

	habits := service.NewHabitService(gdb)
	habits.SetClock(func() time.Time { return created.Add(8 * time.Hour) })
	entries := service.NewEntryService(gdb)
	entries.SetClock(func() time.Time { return now })

	result := &seedResult{}
	create := func(input service.HabitInput) (*db.Habit, error) {
		habit, err := habits.Create(input)
		if err != nil {
			return nil, fmt.Errorf("create %s: %w", input.Name, err)
		}
		result.Habits++
		return habit, nil
	}
	record := func(habitID uint, day time.Time, value *float64) error {
		if _, err := entries.Record(service.EntryInput{HabitID: habitID, Date: day, Value: value}); err != nil {
			return fmt.Errorf("record habit %d on %s: %w", habitID, day.Format(time.DateOnly), err)
		}
		result.Entries++
		return nil
	}

	run, err := create(service.HabitInput{
		Name:             "晨跑",
		Emoji:            "🏃",
		Unit:             "min",
		Notes:            "从 **10 分钟** 慢慢加量",
		Direction:        "increase",
		StartValue:       ptr(10),
		ProgressionMode:  "absolute",
		ProgressionValue: 2,
		TargetValue:      ptr(30),
	})
	if err != nil {
		return nil, err
	}

	coffee, err := create(service.HabitInput{
		Name:             "少喝咖啡",
		Emoji:            "☕",
		Unit:             "cups",
		Direction:        "decrease",
		StartValue:       ptr(4),
		ProgressionMode:  "percentage",
		ProgressionValue: 25,
		TargetValue:      ptr(1),
	})
	if err != nil {
		return nil, err
	}

	water, err := create(service.HabitInput{
		Name:         "喝水",
		Emoji:        "💧",
		Unit:         "cups",
		Direction:    "maintain",
		StartValue:   ptr(8),
		TrackingMode: "counter",
		EntryMode:    "cumulative",
	})
	if err != nil {
		return nil, err
	}

	strength, err := create(service.HabitInput{
		Name:              "力量训练",
		Emoji:             "🏋️",
		Direction:         "maintain",
		StartValue:        ptr(3),
		TrackingMode:      "simple",
		TrackingFrequency: "weekly",
		WeeklyAggregation: "count-days",
	})
	if err != nil {
		return nil, err
	}

	pauseStart := today.AddDate(0, 0, -9)
	pauseEnd := today.AddDate(0, 0, -3)
	stretch, err := create(service.HabitInput{
		Name:          "拉伸",
		Emoji:         "🧘",
		Unit:          "min",
		Direction:     "maintain",
		StartValue:    ptr(5),
		PauseStart:    &pauseStart,
		PauseEnd:      &pauseEnd,
		AnchorHabitID: &run.ID,
	})
	if err != nil {
		return nil, err
	}

	// 最近五天没有碰过，用来触发“欢迎回来”
	guitar, err := create(service.HabitInput{
		Name:       "练琴",
		Emoji:      "🎸",
		Unit:       "min",
		Direction:  "maintain",
		StartValue: ptr(15),
	})
	if err != nil {
		return nil, err
	}

	for offset := seedDays; offset >= 0; offset-- {
		day := today.AddDate(0, 0, -offset)
		n := seedDays - offset

		if n%5 != 4 {
			minutes := 10 + float64(n/7)*2 + float64(n%3)
			if err := record(run.ID, day, &minutes); err != nil {
				return nil, err
			}
			if (day.Before(pauseStart) || day.After(pauseEnd)) && n%2 == 0 {
				if err := record(stretch.ID, day, ptr(5)); err != nil {
					return nil, err
				}
			}
		}

		cups := float64(4 - n/7 - n%2)
		if cups < 0 {
			cups = 0
		}
		if err := record(coffee.ID, day, &cups); err != nil {
			return nil, err
		}

		for i := 0; i < 5+n%4; i++ {
			if _, err := entries.Increment(water.ID, day, 1); err != nil {
				return nil, fmt.Errorf("increment water on %s: %w", day.Format(time.DateOnly), err)
			}
			result.Entries++
		}

		if day.Weekday() == time.Monday || day.Weekday() == time.Wednesday || day.Weekday() == time.Saturday {
			if err := record(strength.ID, day, nil); err != nil {
				return nil, err
			}
		}

		if offset >= 5 && n%3 != 1 {
			if err := record(guitar.ID, day, ptr(15+float64(n%4)*5)); err != nil {
				return nil, err
			}
		}
	}

	return result, nil
}

func ptr(v float64) *float64 {
	return &v
}
