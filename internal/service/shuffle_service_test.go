package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"go.uber.org/zap"

	"github.com/forhay123/haybee-edu-sub009/internal/model"
)

// ── 测试辅助 ──

func setupTestShuffleService() (ShuffleService, *mockRepoSet) {
	repo, set := newMockRepoSet()
	svc := NewShuffleService(repo, zap.NewNop())
	return svc, set
}

// seedAssessment 准备一份带 n 道题的基础测评
func seedAssessment(set *mockRepoSet, assessmentID string, n int) {
	set.assessment.assessments[assessmentID] = &model.Assessment{
		AssessmentID:  assessmentID,
		LessonTopicID: "topic-001",
		Title:         "数学基础测评",
		IsActive:      true,
	}
	questions := make([]model.AssessmentQuestion, 0, n)
	for i := 1; i <= n; i++ {
		questions = append(questions, model.AssessmentQuestion{
			QuestionID:   fmt.Sprintf("q-%03d", i),
			AssessmentID: assessmentID,
			OrderNumber:  i,
			QuestionText: fmt.Sprintf("第 %d 题", i),
		})
	}
	set.assessment.questions[assessmentID] = questions
}

// shuffledIDs 取某实例的题目 ID 序列（按展示顺序）
func shuffledIDs(t *testing.T, set *mockRepoSet, instanceID string) []string {
	t.Helper()
	rows, err := set.assessment.ListShuffledQuestions(context.Background(), instanceID)
	if err != nil {
		t.Fatalf("查询题序应成功: %v", err)
	}
	ids := make([]string, 0, len(rows))
	for _, r := range rows {
		ids = append(ids, r.QuestionID)
	}
	return ids
}

// ── CreateShuffledInstances 测试 ──

func TestShuffleService_Deterministic(t *testing.T) {
	// 两套独立环境，同样的输入必须得到同样的题序
	svcA, setA := setupTestShuffleService()
	seedAssessment(setA, "as-001", 8)
	svcB, setB := setupTestShuffleService()
	seedAssessment(setB, "as-001", 8)

	instA, err := svcA.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 3, 5)
	if err != nil {
		t.Fatalf("CreateShuffledInstances 应成功: %v", err)
	}
	instB, err := svcB.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 3, 5)
	if err != nil {
		t.Fatalf("CreateShuffledInstances 应成功: %v", err)
	}

	for i := range instA {
		idsA := shuffledIDs(t, setA, instA[i].InstanceID)
		idsB := shuffledIDs(t, setB, instB[i].InstanceID)
		if len(idsA) != len(idsB) {
			t.Fatalf("课时 %d 题目数不一致", i+1)
		}
		for j := range idsA {
			if idsA[j] != idsB[j] {
				t.Errorf("课时 %d 第 %d 位题目不一致: %s vs %s", i+1, j+1, idsA[j], idsB[j])
			}
		}
	}
}

func TestShuffleService_EachQuestionExactlyOnce(t *testing.T) {
	svc, set := setupTestShuffleService()
	seedAssessment(set, "as-001", 10)

	instances, err := svc.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 2, 3)
	if err != nil {
		t.Fatalf("CreateShuffledInstances 应成功: %v", err)
	}

	for _, inst := range instances {
		ids := shuffledIDs(t, set, inst.InstanceID)
		if len(ids) != 10 {
			t.Fatalf("实例 %s 期望 10 道题，实际 %d 道", inst.InstanceSuffix, len(ids))
		}
		seen := make(map[string]bool)
		for _, id := range ids {
			if seen[id] {
				t.Errorf("实例 %s 题目 %s 重复出现", inst.InstanceSuffix, id)
			}
			seen[id] = true
		}
	}
}

func TestShuffleService_DistinctOrdersAcrossInstances(t *testing.T) {
	svc, set := setupTestShuffleService()
	seedAssessment(set, "as-001", 6)

	instances, err := svc.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 4, 2)
	if err != nil {
		t.Fatalf("CreateShuffledInstances 应成功: %v", err)
	}

	orders := make(map[string]string)
	for _, inst := range instances {
		key := ""
		for _, id := range shuffledIDs(t, set, inst.InstanceID) {
			key += id + "|"
		}
		if prev, dup := orders[key]; dup {
			t.Errorf("实例 %s 与 %s 题序相同", inst.InstanceSuffix, prev)
		}
		orders[key] = inst.InstanceSuffix
	}
}

func TestShuffleService_ReuseExistingInstances(t *testing.T) {
	svc, set := setupTestShuffleService()
	seedAssessment(set, "as-001", 5)

	first, err := svc.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 3, 1)
	if err != nil {
		t.Fatalf("第一次生成应成功: %v", err)
	}
	second, err := svc.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 3, 1)
	if err != nil {
		t.Fatalf("第二次生成应成功: %v", err)
	}

	if len(set.assessment.instances) != 3 {
		t.Errorf("重复生成不应新建实例，期望 3 个，实际 %d 个", len(set.assessment.instances))
	}
	for i := range first {
		if first[i].InstanceID != second[i].InstanceID {
			t.Errorf("课时 %d 应复用实例 %s，实际 %s", i+1, first[i].InstanceID, second[i].InstanceID)
		}
	}
}

func TestShuffleService_SuffixSequence(t *testing.T) {
	svc, set := setupTestShuffleService()
	seedAssessment(set, "as-001", 15)

	instances, err := svc.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 12, 1)
	if err != nil {
		t.Fatalf("CreateShuffledInstances 应成功: %v", err)
	}
	if len(instances) != 12 {
		t.Fatalf("期望 12 个实例，实际 %d 个", len(instances))
	}
	if instances[0].InstanceSuffix != "A" {
		t.Errorf("第 1 课时后缀期望 A，实际 %s", instances[0].InstanceSuffix)
	}
	if instances[9].InstanceSuffix != "J" {
		t.Errorf("第 10 课时后缀期望 J，实际 %s", instances[9].InstanceSuffix)
	}
	if instances[10].InstanceSuffix != "11" {
		t.Errorf("第 11 课时后缀期望 11，实际 %s", instances[10].InstanceSuffix)
	}
	if instances[11].InstanceSuffix != "12" {
		t.Errorf("第 12 课时后缀期望 12，实际 %s", instances[11].InstanceSuffix)
	}
}

func TestShuffleService_AssessmentNotFound(t *testing.T) {
	svc, _ := setupTestShuffleService()

	_, err := svc.CreateShuffledInstances(context.Background(), "no-such", "topic-001", 2, 1)
	if !errors.Is(err, ErrAssessmentNotFound) {
		t.Errorf("期望 ErrAssessmentNotFound，实际: %v", err)
	}
}

func TestShuffleService_NoQuestions(t *testing.T) {
	svc, set := setupTestShuffleService()
	seedAssessment(set, "as-001", 0)

	_, err := svc.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 2, 1)
	if !errors.Is(err, ErrAssessmentNoQuestions) {
		t.Errorf("期望 ErrAssessmentNoQuestions，实际: %v", err)
	}
}

// ── DeleteInstancesForAssessment 测试 ──

func TestShuffleService_DeleteInstances(t *testing.T) {
	svc, set := setupTestShuffleService()
	seedAssessment(set, "as-001", 5)

	if _, err := svc.CreateShuffledInstances(context.Background(), "as-001", "topic-001", 3, 1); err != nil {
		t.Fatalf("生成应成功: %v", err)
	}
	if err := svc.DeleteInstancesForAssessment(context.Background(), "as-001"); err != nil {
		t.Fatalf("DeleteInstancesForAssessment 应成功: %v", err)
	}
	if len(set.assessment.instances) != 0 {
		t.Errorf("删除后不应残留实例，实际 %d 个", len(set.assessment.instances))
	}
	if len(set.assessment.shuffled) != 0 {
		t.Errorf("删除实例应级联清除题序，实际残留 %d 组", len(set.assessment.shuffled))
	}
}
