package service

import "time"

// ScheduleState 课表行的运行时状态（由窗口时间与提交情况派生，从不落库）
type ScheduleState string

const (
	StatePending   ScheduleState = "PENDING"   // 窗口未开启
	StateAvailable ScheduleState = "AVAILABLE" // 窗口开启（含宽限期），可提交
	StateCompleted ScheduleState = "COMPLETED" // 存在有效提交或已标记完成
	StateMissed    ScheduleState = "MISSED"    // 宽限期已过且无有效提交
)

// StatusSnapshot 状态派生的全部输入，一次性取齐后纯函数求值
type StatusSnapshot struct {
	Now                time.Time
	WindowStart        *time.Time
	WindowEnd          *time.Time
	GraceEnd           *time.Time
	HasValidSubmission bool
	CompletedAt        *time.Time
}

// DeriveStatus 派生课表行状态。
// 完成判定优先于时间判定：有效提交一经记录，状态不随时间回退
func DeriveStatus(snap StatusSnapshot) ScheduleState {
	if snap.HasValidSubmission || snap.CompletedAt != nil {
		return StateCompleted
	}

	// 窗口未设置（缺主题等待人工指派）按未开启处理
	if snap.WindowStart == nil || snap.WindowEnd == nil {
		return StatePending
	}

	if snap.Now.Before(*snap.WindowStart) {
		return StatePending
	}

	deadline := *snap.WindowEnd
	if snap.GraceEnd != nil {
		deadline = *snap.GraceEnd
	}
	if snap.Now.Before(deadline) {
		return StateAvailable
	}

	return StateMissed
}
