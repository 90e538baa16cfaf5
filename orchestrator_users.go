package postboard

import "context"

// Register creates an account. It does not log the new user in.
func (o *Orchestrator) Register(ctx context.Context, reg Registration) (*User, error) {
	if o.localValidation {
		if err := reg.Validate(); err != nil {
			return nil, o.invalid(ctx, OpRegister, MsgRegisterFailed, err)
		}
	}

	user, err := o.api.Register(ctx, reg)
	if err != nil {
		return nil, o.fail(ctx, failure{
			op:          OpRegister,
			message:     MsgRegisterFailed,
			credentials: true,
			textBody:    true,
		}, err)
	}

	event := ActivityEvent{EventType: ActivityEventUserRegistered}
	if user != nil {
		event.UserID = user.ID
	}
	o.succeed(ctx, OpRegister, MsgRegisterSucceeded, event)
	o.redirect(ctx, RouteLogin)
	return user, nil
}

// Login authenticates through the SessionStore.
func (o *Orchestrator) Login(ctx context.Context, creds Credentials) (Session, error) {
	if o.localValidation {
		if err := creds.Validate(); err != nil {
			return o.sessions.Current(), o.invalid(ctx, OpLogin, MsgLoginFailed, err)
		}
	}

	session, err := o.sessions.Login(ctx, creds)
	if err != nil {
		opErr := o.fail(ctx, failure{op: OpLogin, message: MsgLoginFailed, credentials: true}, err)
		return session, opErr
	}

	o.logger.Debug("session changed", "session", session.String())
	o.notify(ctx, Notice{Level: NoticeSuccess, Operation: OpLogin, Message: MsgLoginSucceeded})
	o.redirect(ctx, RoutePostIndex)
	return session, nil
}

// Logout ends the session through the SessionStore.
func (o *Orchestrator) Logout(ctx context.Context) error {
	if err := o.sessions.Logout(ctx); err != nil {
		return o.fail(ctx, failure{op: OpLogout, message: MsgLogoutFailed, credentials: true}, err)
	}

	o.notify(ctx, Notice{Level: NoticeSuccess, Operation: OpLogout, Message: MsgLogoutSucceeded})
	o.redirect(ctx, RoutePostIndex)
	return nil
}
