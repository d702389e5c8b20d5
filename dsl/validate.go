package dsl

import "fmt"

// Validate 检查语法之外的约束：surface 必须先于其他语句出现且仅出现一次，
// mouse down/move 需要恰好一个坐标，mouse up/leave 不带坐标。
func (s *Script) Validate() error {
	if s == nil || len(s.Statements) == 0 {
		return fmt.Errorf("脚本为空")
	}
	if s.Statements[0].Surface == nil {
		return fmt.Errorf("%s: 第一条语句必须是 surface", s.Statements[0].Pos)
	}
	for i, st := range s.Statements {
		switch {
		case st.Surface != nil:
			if i > 0 {
				return fmt.Errorf("%s: surface 只能声明一次", st.Pos)
			}
			if st.Surface.Width <= 0 || st.Surface.Height <= 0 {
				return fmt.Errorf("%s: surface 尺寸必须为正数", st.Pos)
			}
		case st.Pointer != nil:
			if err := st.Pointer.validate(); err != nil {
				return fmt.Errorf("%s: %w", st.Pos, err)
			}
		case st.Resize != nil:
			if st.Resize.Width < 0 || st.Resize.Height < 0 {
				return fmt.Errorf("%s: resize 尺寸不能为负数", st.Pos)
			}
		case st.Snapshot != nil:
			if st.Snapshot.Path == "" {
				return fmt.Errorf("%s: snapshot 缺少文件名", st.Pos)
			}
		}
	}
	return nil
}

func (p *PointerStmt) validate() error {
	if p.Device != "mouse" {
		return nil
	}
	switch p.Phase {
	case "down", "move":
		if len(p.Points) != 1 {
			return fmt.Errorf("mouse %s 需要一个坐标，实际 %d 个", p.Phase, len(p.Points))
		}
	default:
		if len(p.Points) != 0 {
			return fmt.Errorf("mouse %s 不接受坐标", p.Phase)
		}
	}
	return nil
}
